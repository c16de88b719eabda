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

func setupBalanceServiceTest(t *testing.T) (*BalanceService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:balance_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Member{},
		&models.CommissionTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewBalanceService(repository.NewMemberRepository(db)), db
}

func createTestMember(t *testing.T, db *gorm.DB, id uint, available, frozen, total float64) {
	t.Helper()
	member := models.Member{
		ID:                  id,
		Username:            fmt.Sprintf("member_%d", id),
		Status:              constants.MemberStatusActive,
		TotalCommission:     models.NewMoneyFromDecimal(decimal.NewFromFloat(total)),
		AvailableCommission: models.NewMoneyFromDecimal(decimal.NewFromFloat(available)),
		FrozenCommission:    models.NewMoneyFromDecimal(decimal.NewFromFloat(frozen)),
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create member failed: %v", err)
	}
}

func TestBalanceServiceCreditAvailable(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createTestMember(t, db, 201, 100, 0, 100)

	member, txn, err := svc.CreditAvailable(BalanceChangeInput{
		MemberID:  201,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(56.40)),
		Reference: "commission:9001:confirm",
		Remark:    "订单 9001 佣金确认",
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromFloat(156.40)) {
		t.Fatalf("unexpected available: %s", member.AvailableCommission.String())
	}
	if !member.TotalCommission.Decimal.Equal(decimal.NewFromFloat(156.40)) {
		t.Fatalf("unexpected total: %s", member.TotalCommission.String())
	}
	if txn.Type != constants.BalanceTxnTypeCommissionCredit {
		t.Fatalf("unexpected txn type: %s", txn.Type)
	}
	if !txn.AvailableBefore.Decimal.Equal(decimal.NewFromInt(100)) ||
		!txn.AvailableAfter.Decimal.Equal(decimal.NewFromFloat(156.40)) {
		t.Fatalf("unexpected txn snapshot: %+v", txn)
	}
}

func TestBalanceServiceFreezeInsufficient(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createTestMember(t, db, 202, 30, 0, 30)

	_, _, err := svc.MoveAvailableToFrozen(BalanceChangeInput{
		MemberID:  202,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Reference: "withdraw:W202:freeze",
	})
	if !errors.Is(err, ErrBalanceInsufficient) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}

	var member models.Member
	if err := db.First(&member, 202).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(30)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("balances changed after failed freeze: %+v", member)
	}
}

func TestBalanceServiceWithdrawLifecycle(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createTestMember(t, db, 203, 200, 0, 200)

	member, _, err := svc.MoveAvailableToFrozen(BalanceChangeInput{
		MemberID:  203,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		Reference: "withdraw:W203:freeze",
	})
	if err != nil {
		t.Fatalf("freeze failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(120)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected balances after freeze: %+v", member)
	}

	member, txn, err := svc.DebitFrozenPermanently(BalanceChangeInput{
		MemberID:  203,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		Reference: "withdraw:W203:settle",
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if !member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("frozen not cleared: %s", member.FrozenCommission.String())
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("available changed by settle: %s", member.AvailableCommission.String())
	}
	// total 只在佣金入账时累加，提现完成不回写
	if !member.TotalCommission.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total changed by settle: %s", member.TotalCommission.String())
	}
	if txn.Type != constants.BalanceTxnTypeWithdrawSettle {
		t.Fatalf("unexpected txn type: %s", txn.Type)
	}

	var db203 models.Member
	if err := db.First(&db203, 203).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !db203.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("persisted frozen mismatch: %s", db203.FrozenCommission.String())
	}
}

func TestBalanceServiceUnfreezeReturnsToAvailable(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createTestMember(t, db, 204, 60, 40, 100)

	member, _, err := svc.MoveFrozenToAvailable(BalanceChangeInput{
		MemberID:  204,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		Reference: "withdraw:W204:unfreeze",
	})
	if err != nil {
		t.Fatalf("unfreeze failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(100)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("unexpected balances after unfreeze: %+v", member)
	}

	_, _, err = svc.MoveFrozenToAvailable(BalanceChangeInput{
		MemberID:  204,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(1)),
		Reference: "withdraw:W204:unfreeze2",
	})
	if !errors.Is(err, ErrBalanceInsufficient) {
		t.Fatalf("expected insufficient frozen, got: %v", err)
	}
}

func TestBalanceServiceRestoreAvailableKeepsTotal(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createTestMember(t, db, 205, 10, 0, 90)

	member, txn, err := svc.RestoreAvailable(BalanceChangeInput{
		MemberID:  205,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		Reference: "withdraw:W205:restore",
	})
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unexpected available: %s", member.AvailableCommission.String())
	}
	if !member.TotalCommission.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("total changed by restore: %s", member.TotalCommission.String())
	}
	if txn.Type != constants.BalanceTxnTypeWithdrawRestore {
		t.Fatalf("unexpected txn type: %s", txn.Type)
	}
}

func TestBalanceServiceDuplicateReferenceIdempotent(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createTestMember(t, db, 206, 0, 0, 0)

	input := BalanceChangeInput{
		MemberID:  206,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Reference: "commission:9006:confirm",
	}
	if _, _, err := svc.CreditAvailable(input); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	member, txn, err := svc.CreditAvailable(input)
	if err != nil {
		t.Fatalf("duplicate credit failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("duplicate reference re-applied: %s", member.AvailableCommission.String())
	}
	if txn == nil || txn.Reference != input.Reference {
		t.Fatalf("expected existing transaction, got: %+v", txn)
	}

	var count int64
	if err := db.Model(&models.CommissionTransaction{}).
		Where("reference = ?", input.Reference).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single transaction row, got %d", count)
	}
}

func TestBalanceServiceInvalidInput(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	createTestMember(t, db, 207, 100, 0, 100)

	_, _, err := svc.CreditAvailable(BalanceChangeInput{
		MemberID:  207,
		Amount:    models.NewMoneyFromDecimal(decimal.Zero),
		Reference: "commission:9007:confirm",
	})
	if !errors.Is(err, ErrBalanceInvalidAmount) {
		t.Fatalf("expected invalid amount, got: %v", err)
	}

	_, _, err = svc.CreditAvailable(BalanceChangeInput{
		MemberID:  207,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Reference: "  ",
	})
	if !errors.Is(err, ErrBalanceTransactionCreateFailed) {
		t.Fatalf("expected invalid reference, got: %v", err)
	}

	_, _, err = svc.CreditAvailable(BalanceChangeInput{
		MemberID:  9999,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Reference: "commission:9999:confirm",
	})
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected member not found, got: %v", err)
	}
}
