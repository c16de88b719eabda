package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCommissionServiceTest(t *testing.T) (*CommissionService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:commission_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Member{},
		&models.CommissionCalculation{},
		&models.CommissionTransaction{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	memberRepo := repository.NewMemberRepository(db)
	balanceService := NewBalanceService(memberRepo)
	settingService := NewSettingService(repository.NewSettingRepository(db))
	return NewCommissionService(
		repository.NewCommissionRepository(db),
		memberRepo,
		balanceService,
		settingService,
	), db
}

func seedCommissionSetting(t *testing.T, db *gorm.DB, setting CommissionSetting) {
	t.Helper()
	value := models.JSON(CommissionSettingToMap(setting))
	if err := db.Create(&models.Setting{
		Key:       constants.SettingKeyCommissionConfig,
		ValueJSON: value,
	}).Error; err != nil {
		t.Fatalf("seed commission setting failed: %v", err)
	}
}

func TestCommissionServiceCreateCalculation(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	createTestMember(t, db, 301, 0, 0, 0)

	calc, err := svc.CreateCalculation(CommissionCreateInput{
		OrderID:           8001,
		RecipientMemberID: 301,
		PayerMemberID:     302,
		CommissionType:    constants.CommissionTypeDirect,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(1188)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.30)),
	})
	if err != nil {
		t.Fatalf("create calculation failed: %v", err)
	}
	if calc.Status != constants.CommissionStatusPending {
		t.Fatalf("unexpected status: %s", calc.Status)
	}
	if !calc.CommissionAmount.Decimal.Equal(decimal.NewFromFloat(356.40)) {
		t.Fatalf("unexpected commission amount: %s", calc.CommissionAmount.String())
	}

	// 同一 (订单, 受益人, 类型) 不允许重复
	_, err = svc.CreateCalculation(CommissionCreateInput{
		OrderID:           8001,
		RecipientMemberID: 301,
		CommissionType:    constants.CommissionTypeDirect,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(1188)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.30)),
	})
	if !errors.Is(err, ErrCommissionExists) {
		t.Fatalf("expected duplicate error, got: %v", err)
	}
}

func TestCommissionServiceCreateCalculationValidation(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	createTestMember(t, db, 303, 0, 0, 0)

	cases := []struct {
		name  string
		input CommissionCreateInput
		want  error
	}{
		{
			name: "unknown type",
			input: CommissionCreateInput{
				OrderID:           8100,
				RecipientMemberID: 303,
				CommissionType:    "bonus",
				OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
				CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.1)),
			},
			want: ErrCommissionInvalid,
		},
		{
			name: "zero order amount",
			input: CommissionCreateInput{
				OrderID:           8101,
				RecipientMemberID: 303,
				CommissionType:    constants.CommissionTypeDirect,
				OrderAmount:       models.NewMoneyFromDecimal(decimal.Zero),
				CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.1)),
			},
			want: ErrCommissionInvalid,
		},
		{
			name: "rate above one",
			input: CommissionCreateInput{
				OrderID:           8102,
				RecipientMemberID: 303,
				CommissionType:    constants.CommissionTypeDirect,
				OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
				CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(1.5)),
			},
			want: ErrCommissionInvalid,
		},
		{
			name: "rounds to zero",
			input: CommissionCreateInput{
				OrderID:           8103,
				RecipientMemberID: 303,
				CommissionType:    constants.CommissionTypeDirect,
				OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(0.01)),
				CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.01)),
			},
			want: ErrCommissionInvalid,
		},
		{
			name: "member missing",
			input: CommissionCreateInput{
				OrderID:           8104,
				RecipientMemberID: 9999,
				CommissionType:    constants.CommissionTypeDirect,
				OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
				CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.1)),
			},
			want: ErrMemberNotFound,
		},
	}
	for _, tc := range cases {
		if _, err := svc.CreateCalculation(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCommissionServiceCreateCalculationDisabledMember(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	member := models.Member{
		ID:       304,
		Username: "member_304",
		Status:   constants.MemberStatusDisabled,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create member failed: %v", err)
	}

	_, err := svc.CreateCalculation(CommissionCreateInput{
		OrderID:           8200,
		RecipientMemberID: 304,
		CommissionType:    constants.CommissionTypeDirect,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.1)),
	})
	if !errors.Is(err, ErrMemberDisabled) {
		t.Fatalf("expected disabled member error, got: %v", err)
	}
}

func TestCommissionServiceConfirmCreditsOnce(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	createTestMember(t, db, 305, 0, 0, 0)

	calc, err := svc.CreateCalculation(CommissionCreateInput{
		OrderID:           8300,
		RecipientMemberID: 305,
		CommissionType:    constants.CommissionTypeDistributor,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(2000)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
	})
	if err != nil {
		t.Fatalf("create calculation failed: %v", err)
	}

	confirmed, err := svc.Confirm(calc.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != constants.CommissionStatusConfirmed {
		t.Fatalf("unexpected status: %s", confirmed.Status)
	}

	var member models.Member
	if err := db.First(&member, 305).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(200)) ||
		!member.TotalCommission.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected balances after confirm: %+v", member)
	}

	if _, err := svc.Confirm(calc.ID); !errors.Is(err, ErrCommissionStatusInvalid) {
		t.Fatalf("expected status error on double confirm, got: %v", err)
	}
	if err := db.First(&member, 305).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("double confirm changed balance: %s", member.AvailableCommission.String())
	}
}

func TestCommissionServiceCancelPendingOnly(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	createTestMember(t, db, 306, 0, 0, 0)

	calc, err := svc.CreateCalculation(CommissionCreateInput{
		OrderID:           8400,
		RecipientMemberID: 306,
		CommissionType:    constants.CommissionTypeIndirect,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
	})
	if err != nil {
		t.Fatalf("create calculation failed: %v", err)
	}

	cancelled, err := svc.Cancel(calc.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.CommissionStatusCancelled {
		t.Fatalf("unexpected status: %s", cancelled.Status)
	}

	if _, err := svc.Confirm(calc.ID); !errors.Is(err, ErrCommissionStatusInvalid) {
		t.Fatalf("expected status error on confirm after cancel, got: %v", err)
	}
	if _, err := svc.Cancel(calc.ID); !errors.Is(err, ErrCommissionStatusInvalid) {
		t.Fatalf("expected status error on double cancel, got: %v", err)
	}

	var member models.Member
	if err := db.First(&member, 306).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("cancel credited balance: %s", member.AvailableCommission.String())
	}
}

func TestCommissionServiceCreateOrderCalculations(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	createTestMember(t, db, 307, 0, 0, 0)
	createTestMember(t, db, 308, 0, 0, 0)
	createTestMember(t, db, 309, 0, 0, 0)
	seedCommissionSetting(t, db, CommissionSetting{
		DirectRate:             0.30,
		IndirectRate:           0,
		DistributorRate:        0.10,
		NetworkDistributorRate: 0.05,
		ConfirmDelayDays:       7,
	})

	recipients := []CommissionRecipient{
		{MemberID: 307, CommissionType: constants.CommissionTypeDirect},
		{MemberID: 308, CommissionType: constants.CommissionTypeIndirect},     // 比例为 0，跳过
		{MemberID: 309, CommissionType: constants.CommissionTypeDistributor},
		{MemberID: 307, CommissionType: constants.CommissionTypeNetworkDistributor},
	}
	if err := svc.CreateOrderCalculations(8500, 309, models.NewMoneyFromDecimal(decimal.NewFromInt(1000)), recipients); err != nil {
		t.Fatalf("create order calculations failed: %v", err)
	}

	var rows []models.CommissionCalculation
	if err := db.Where("order_id = ?", 8500).Order("id").Find(&rows).Error; err != nil {
		t.Fatalf("load calculations failed: %v", err)
	}
	// 309 是下单人自身，308 比例为 0，都不产生记录
	if len(rows) != 2 {
		t.Fatalf("expected 2 calculations, got %d", len(rows))
	}
	for _, row := range rows {
		if row.RecipientMemberID != 307 {
			t.Fatalf("unexpected recipient: %d", row.RecipientMemberID)
		}
	}

	// 重复投递不产生重复记录
	if err := svc.CreateOrderCalculations(8500, 309, models.NewMoneyFromDecimal(decimal.NewFromInt(1000)), recipients); err != nil {
		t.Fatalf("repeat order calculations failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.CommissionCalculation{}).Where("order_id = ?", 8500).Count(&count).Error; err != nil {
		t.Fatalf("count calculations failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("duplicate dispatch created rows, got %d", count)
	}
}

func TestCommissionServiceConfirmDueCalculations(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	createTestMember(t, db, 310, 0, 0, 0)
	seedCommissionSetting(t, db, CommissionSetting{
		DirectRate:       0.10,
		ConfirmDelayDays: 7,
	})

	now := time.Now()
	due := models.CommissionCalculation{
		OrderID:           8600,
		RecipientMemberID: 310,
		CommissionType:    constants.CommissionTypeDirect,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
		CommissionAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Status:            constants.CommissionStatusPending,
		CalculationDate:   now.AddDate(0, 0, -10),
	}
	fresh := models.CommissionCalculation{
		OrderID:           8601,
		RecipientMemberID: 310,
		CommissionType:    constants.CommissionTypeDirect,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
		CommissionAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Status:            constants.CommissionStatusPending,
		CalculationDate:   now.AddDate(0, 0, -1),
	}
	if err := db.Create(&due).Error; err != nil {
		t.Fatalf("create due calculation failed: %v", err)
	}
	if err := db.Create(&fresh).Error; err != nil {
		t.Fatalf("create fresh calculation failed: %v", err)
	}

	confirmed, err := svc.ConfirmDueCalculations(now)
	if err != nil {
		t.Fatalf("confirm due failed: %v", err)
	}
	if confirmed != 1 {
		t.Fatalf("expected 1 confirmed, got %d", confirmed)
	}

	var reloadedDue models.CommissionCalculation
	if err := db.First(&reloadedDue, due.ID).Error; err != nil {
		t.Fatalf("reload due calculation failed: %v", err)
	}
	if reloadedDue.Status != constants.CommissionStatusConfirmed {
		t.Fatalf("due calculation not confirmed: %s", reloadedDue.Status)
	}
	var reloadedFresh models.CommissionCalculation
	if err := db.First(&reloadedFresh, fresh.ID).Error; err != nil {
		t.Fatalf("reload fresh calculation failed: %v", err)
	}
	if reloadedFresh.Status != constants.CommissionStatusPending {
		t.Fatalf("fresh calculation confirmed early: %s", reloadedFresh.Status)
	}

	var member models.Member
	if err := db.First(&member, 310).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected balance after batch confirm: %s", member.AvailableCommission.String())
	}
}

func TestCommissionServiceStats(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	createTestMember(t, db, 311, 0, 0, 0)

	rows := []models.CommissionCalculation{
		{
			OrderID: 8700, RecipientMemberID: 311,
			CommissionType:   constants.CommissionTypeDirect,
			OrderAmount:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			CommissionRate:   models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
			CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Status:           constants.CommissionStatusConfirmed,
			CalculationDate:  time.Now(),
		},
		{
			OrderID: 8701, RecipientMemberID: 311,
			CommissionType:   constants.CommissionTypeDirect,
			OrderAmount:      models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
			CommissionRate:   models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
			CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			Status:           constants.CommissionStatusPending,
			CalculationDate:  time.Now(),
		},
		{
			OrderID: 8702, RecipientMemberID: 311,
			CommissionType:   constants.CommissionTypeDistributor,
			OrderAmount:      models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
			CommissionRate:   models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
			CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			Status:           constants.CommissionStatusPending,
			CalculationDate:  time.Now(),
		},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed calculation failed: %v", err)
		}
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total.Count != 3 || !stats.Total.Amount.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected total bucket: %+v", stats.Total)
	}
	pending := stats.ByStatus[constants.CommissionStatusPending]
	if pending.Count != 2 || !pending.Amount.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected pending bucket: %+v", pending)
	}
	direct := stats.ByType[constants.CommissionTypeDirect]
	if direct.Count != 2 || !direct.Amount.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected direct bucket: %+v", direct)
	}
}
