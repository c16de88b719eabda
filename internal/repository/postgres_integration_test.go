//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.SettlementAuditLog{},
		&models.WithdrawalRequest{},
		&models.CommissionTransaction{},
		&models.CommissionCalculation{},
		&models.Member{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Member{},
		&models.CommissionCalculation{},
		&models.CommissionTransaction{},
		&models.WithdrawalRequest{},
		&models.SettlementAuditLog{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresMemberKeywordSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewMemberRepository(db)

	members := []models.Member{
		{Username: "pg-rocket-distributor", Nickname: "火箭分销商", Status: constants.MemberStatusActive},
		{Username: "pg-plain-member", Nickname: "普通会员", Status: constants.MemberStatusActive},
	}
	for i := range members {
		if err := db.Create(&members[i]).Error; err != nil {
			t.Fatalf("create member failed: %v", err)
		}
	}

	rows, total, err := repo.List(MemberListFilter{Page: 1, PageSize: 10, Keyword: "火箭"})
	if err != nil {
		t.Fatalf("member keyword search zh failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("member keyword search zh want 1 got total=%d len=%d", total, len(rows))
	}

	// ILIKE 使大小写不敏感的用户名搜索在 postgres 上成立
	rows, total, err = repo.List(MemberListFilter{Page: 1, PageSize: 10, Keyword: "PG-ROCKET"})
	if err != nil {
		t.Fatalf("member keyword search upper failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("member keyword search upper want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresCommissionAggregates(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCommissionRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	member := models.Member{Username: "pg-aggregate-member", Status: constants.MemberStatusActive}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create member failed: %v", err)
	}

	calculations := []models.CommissionCalculation{
		{
			OrderID: 9101, RecipientMemberID: member.ID,
			CommissionType:   constants.CommissionTypeDirect,
			OrderAmount:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			CommissionRate:   models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
			CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Status:           constants.CommissionStatusConfirmed,
			CalculationDate:  now,
		},
		{
			OrderID: 9102, RecipientMemberID: member.ID,
			CommissionType:   constants.CommissionTypeDistributor,
			OrderAmount:      models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
			CommissionRate:   models.NewMoneyFromDecimal(decimal.NewFromFloat(0.10)),
			CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			Status:           constants.CommissionStatusPending,
			CalculationDate:  now,
		},
	}
	for i := range calculations {
		if err := db.Create(&calculations[i]).Error; err != nil {
			t.Fatalf("create calculation failed: %v", err)
		}
	}

	statusRows, err := repo.StatusAggregates()
	if err != nil {
		t.Fatalf("status aggregates failed: %v", err)
	}
	if len(statusRows) != 2 {
		t.Fatalf("status aggregates len want 2 got %d", len(statusRows))
	}
	for _, row := range statusRows {
		if row.Count != 1 {
			t.Fatalf("status %s count want 1 got %d", row.Status, row.Count)
		}
	}

	typeRows, err := repo.TypeAggregates()
	if err != nil {
		t.Fatalf("type aggregates failed: %v", err)
	}
	if len(typeRows) != 2 {
		t.Fatalf("type aggregates len want 2 got %d", len(typeRows))
	}

	rows, total, err := repo.List(CommissionListFilter{Page: 1, PageSize: 10, Keyword: "pg-aggregate"})
	if err != nil {
		t.Fatalf("commission keyword list failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("commission keyword list want 2 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresWithdrawalListFilter(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewWithdrawalRepository(db)

	member := models.Member{Username: "pg-withdraw-member", Status: constants.MemberStatusActive}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create member failed: %v", err)
	}

	requests := []models.WithdrawalRequest{
		{
			WithdrawalNo: "PG-W-001", MemberID: member.ID,
			Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			AccountType: constants.WithdrawAccountTypeWechat,
			Status:      constants.WithdrawStatusProcessing,
		},
		{
			WithdrawalNo: "PG-W-002", MemberID: member.ID,
			Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
			AccountType: constants.WithdrawAccountTypeBank,
			Status:      constants.WithdrawStatusPending,
		},
	}
	for i := range requests {
		if err := db.Create(&requests[i]).Error; err != nil {
			t.Fatalf("create withdrawal failed: %v", err)
		}
	}

	rows, total, err := repo.List(WithdrawalListFilter{
		Page: 1, PageSize: 10,
		Status: constants.WithdrawStatusProcessing,
	})
	if err != nil {
		t.Fatalf("withdrawal status filter failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].WithdrawalNo != "PG-W-001" {
		t.Fatalf("withdrawal status filter mismatch: total=%d len=%d", total, len(rows))
	}

	processing, err := repo.ListProcessingWithBillNo(10)
	if err != nil {
		t.Fatalf("list processing failed: %v", err)
	}
	// 没有网关单号的 processing 单不参与轮询
	if len(processing) != 0 {
		t.Fatalf("processing without bill no should be excluded, got %d", len(processing))
	}
}
