package main

import (
	"fmt"
	"time"

	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示会员
	members := []models.Member{
		{
			Username:            "demo-distributor",
			Nickname:            "演示分销商",
			Status:              constants.MemberStatusActive,
			TotalCommission:     money(1280.00),
			AvailableCommission: money(980.00),
			FrozenCommission:    money(300.00),
		},
		{
			Username:            "demo-direct",
			Nickname:            "演示直推会员",
			Status:              constants.MemberStatusActive,
			TotalCommission:     money(356.40),
			AvailableCommission: money(356.40),
			FrozenCommission:    money(0),
		},
		{
			Username:            "demo-disabled",
			Nickname:            "演示禁用会员",
			Status:              constants.MemberStatusDisabled,
			TotalCommission:     money(52.00),
			AvailableCommission: money(52.00),
			FrozenCommission:    money(0),
		},
	}

	memberIDs := map[string]uint{}
	for _, member := range members {
		var existing models.Member
		if err := models.DB.Where("username = ?", member.Username).First(&existing).Error; err != nil {
			if err := models.DB.Create(&member).Error; err != nil {
				stdLog.Printf("Failed to create member %s: %v", member.Username, err)
				continue
			}
			stdLog.Printf("Created member: %s", member.Username)
			memberIDs[member.Username] = member.ID
		} else {
			stdLog.Printf("Member already exists: %s", member.Username)
			memberIDs[member.Username] = existing.ID
		}
	}

	distributorID := memberIDs["demo-distributor"]
	directID := memberIDs["demo-direct"]

	// 添加演示佣金记录
	calculations := []models.CommissionCalculation{
		{
			OrderID:           100001,
			RecipientMemberID: distributorID,
			PayerMemberID:     directID,
			CommissionType:    constants.CommissionTypeDistributor,
			OrderAmount:       money(2000.00),
			CommissionRate:    money(0.10),
			CommissionAmount:  money(200.00),
			Status:            constants.CommissionStatusConfirmed,
			CalculationDate:   time.Now().AddDate(0, 0, -10),
		},
		{
			OrderID:           100002,
			RecipientMemberID: directID,
			PayerMemberID:     0,
			CommissionType:    constants.CommissionTypeDirect,
			OrderAmount:       money(1188.00),
			CommissionRate:    money(0.30),
			CommissionAmount:  money(356.40),
			Status:            constants.CommissionStatusConfirmed,
			CalculationDate:   time.Now().AddDate(0, 0, -6),
		},
		{
			OrderID:           100003,
			RecipientMemberID: distributorID,
			PayerMemberID:     directID,
			CommissionType:    constants.CommissionTypeNetworkDistributor,
			OrderAmount:       money(860.00),
			CommissionRate:    money(0.05),
			CommissionAmount:  money(43.00),
			Status:            constants.CommissionStatusPending,
			CalculationDate:   time.Now().AddDate(0, 0, -1),
		},
	}

	for _, calc := range calculations {
		if calc.RecipientMemberID == 0 {
			stdLog.Printf("Skip calculation for order %d: recipient missing", calc.OrderID)
			continue
		}
		var existing models.CommissionCalculation
		if err := models.DB.Where(
			"order_id = ? AND recipient_member_id = ? AND commission_type = ?",
			calc.OrderID, calc.RecipientMemberID, calc.CommissionType,
		).First(&existing).Error; err != nil {
			if err := models.DB.Create(&calc).Error; err != nil {
				stdLog.Printf("Failed to create calculation for order %d: %v", calc.OrderID, err)
			} else {
				stdLog.Printf("Created calculation: order %d (%s)", calc.OrderID, calc.CommissionType)
			}
		} else {
			stdLog.Printf("Calculation already exists: order %d (%s)", calc.OrderID, calc.CommissionType)
		}
	}

	// 默认业务配置
	settings := map[string]map[string]interface{}{
		constants.SettingKeyWithdrawConfig: {
			"enabled":    true,
			"max_amount": 500.00,
		},
		constants.SettingKeyCommissionConfig: {
			"direct_rate":              0.30,
			"indirect_rate":            0.10,
			"distributor_rate":         0.10,
			"network_distributor_rate": 0.05,
			"confirm_delay_days":       7,
		},
	}

	for key, value := range settings {
		var setting models.Setting
		if err := models.DB.Where("key = ?", key).First(&setting).Error; err != nil {
			setting = models.Setting{
				Key:       key,
				ValueJSON: models.JSON(value),
			}
			if err := models.DB.Create(&setting).Error; err != nil {
				stdLog.Printf("Failed to create setting %s: %v", key, err)
			} else {
				stdLog.Printf("Created setting: %s", key)
			}
		} else {
			stdLog.Printf("Setting already exists: %s", key)
		}
	}

	fmt.Println("\n✅ Demo data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Members (distributor / direct / disabled)")
	fmt.Println("- 3 Commission calculations (2 confirmed + 1 pending)")
	fmt.Println("- Withdraw and commission settings")
}

func money(value float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(value))
}
