package service

import (
	"errors"
	"testing"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"

	"github.com/shopspring/decimal"
)

type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func TestUpdateWithdrawSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyWithdrawConfig, map[string]interface{}{
		"enabled":    "true",
		"max_amount": "123.456",
	})
	if err != nil {
		t.Fatalf("update withdraw config failed: %v", err)
	}
	if enabled := parseSettingBool(result["enabled"]); !enabled {
		t.Fatalf("expected enabled true, got %v", result["enabled"])
	}
	if result["max_amount"] != "123.46" {
		t.Fatalf("expected max_amount stored as \"123.46\", got %v", result["max_amount"])
	}
}

func TestWithdrawSettingLegacyFloatValue(t *testing.T) {
	// 历史版本以浮点数落库，读取时也要能归一化为定点金额
	setting := withdrawSettingFromJSON(models.JSON{
		"enabled":    true,
		"max_amount": float64(500),
	}, WithdrawDefaultSetting())
	if !setting.Enabled {
		t.Fatalf("expected enabled true")
	}
	if !setting.MaxAmount.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected max_amount: %v", setting.MaxAmount)
	}
}

func TestWithdrawSettingValidation(t *testing.T) {
	err := ValidateWithdrawSetting(WithdrawSetting{Enabled: true})
	if !errors.Is(err, ErrWithdrawConfigInvalid) {
		t.Fatalf("expected config error for enabled zero limit, got: %v", err)
	}
	if err := ValidateWithdrawSetting(WithdrawSetting{Enabled: false}); err != nil {
		t.Fatalf("disabled config should be valid, got: %v", err)
	}

	negative := models.NewMoneyFromDecimal(decimal.NewFromInt(-5))
	normalized := NormalizeWithdrawSetting(WithdrawSetting{Enabled: true, MaxAmount: negative})
	if !normalized.MaxAmount.Decimal.IsZero() {
		t.Fatalf("negative limit not clamped: %v", normalized.MaxAmount)
	}

	oversized := models.NewMoneyFromDecimal(decimal.NewFromInt(200000000))
	capped := NormalizeWithdrawSetting(WithdrawSetting{Enabled: true, MaxAmount: oversized})
	if !capped.MaxAmount.Decimal.Equal(decimal.NewFromInt(100000000)) {
		t.Fatalf("oversized limit not capped: %v", capped.MaxAmount)
	}
}

func TestUpdateCommissionSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyCommissionConfig, map[string]interface{}{
		"direct_rate":        "0.30",
		"distributor_rate":   1.8,
		"confirm_delay_days": "99999",
	})
	if err != nil {
		t.Fatalf("update commission config failed: %v", err)
	}
	direct, err := parseSettingFloat(result["direct_rate"])
	if err != nil {
		t.Fatalf("parse direct_rate failed: %v", err)
	}
	if direct != 0.30 {
		t.Fatalf("expected direct_rate 0.30, got %v", direct)
	}
	distributor, err := parseSettingFloat(result["distributor_rate"])
	if err != nil {
		t.Fatalf("parse distributor_rate failed: %v", err)
	}
	if distributor != 1 {
		t.Fatalf("expected distributor_rate clamped to 1, got %v", distributor)
	}
	days, err := parseSettingInt(result["confirm_delay_days"])
	if err != nil {
		t.Fatalf("parse confirm_delay_days failed: %v", err)
	}
	if days != 3650 {
		t.Fatalf("expected confirm_delay_days clamped to 3650, got %d", days)
	}
}

func TestCommissionSettingRateForType(t *testing.T) {
	setting := CommissionSetting{
		DirectRate:             0.30,
		IndirectRate:           0.10,
		DistributorRate:        0.10,
		NetworkDistributorRate: 0.05,
	}
	rate, ok := setting.RateForType(constants.CommissionTypeNetworkDistributor)
	if !ok || rate != 0.05 {
		t.Fatalf("unexpected network distributor rate: %v %v", rate, ok)
	}
	if _, ok := setting.RateForType("bonus"); ok {
		t.Fatalf("unknown type should not resolve")
	}
}

func TestGetCommissionSettingFallsBackToDefault(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	setting, err := svc.GetCommissionSetting()
	if err != nil {
		t.Fatalf("get commission setting failed: %v", err)
	}
	if setting != CommissionDefaultSetting() {
		t.Fatalf("expected default setting, got: %+v", setting)
	}
}

func TestUpdateTransferGatewaySettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyTransferGatewayConfig, map[string]interface{}{
		"provider":        "  WechatPay  ",
		"mch_id":          " 1900000001 ",
		"timeout_seconds": 600,
	})
	if err != nil {
		t.Fatalf("update transfer gateway config failed: %v", err)
	}
	if result["provider"] != constants.TransferProviderWechatpay {
		t.Fatalf("provider not normalized: %v", result["provider"])
	}
	if result["mch_id"] != "1900000001" {
		t.Fatalf("mch_id not trimmed: %v", result["mch_id"])
	}
	timeout, err := parseSettingInt(result["timeout_seconds"])
	if err != nil {
		t.Fatalf("parse timeout_seconds failed: %v", err)
	}
	if timeout != 60 {
		t.Fatalf("expected timeout clamped to 60, got %d", timeout)
	}
}

func TestTransferGatewaySettingValidation(t *testing.T) {
	base := TransferGatewaySetting{
		Enabled:      true,
		Provider:     constants.TransferProviderWechatpay,
		MchID:        "1900000001",
		CertSerialNo: "serial",
		PrivateKey:   "key",
		APIV3Key:     "abcdefghijklmnopqrstuvwxyz123456",
		AppID:        "wx-app",
	}
	if err := ValidateTransferGatewaySetting(base); err != nil {
		t.Fatalf("expected valid gateway config, got: %v", err)
	}

	shortKey := base
	shortKey.APIV3Key = "too-short"
	if err := ValidateTransferGatewaySetting(shortKey); !errors.Is(err, ErrTransferGatewayConfigInvalid) {
		t.Fatalf("expected apiv3 key length error, got: %v", err)
	}

	// 未启用时允许留空密钥字段
	disabled := TransferGatewaySetting{Enabled: false}
	if err := ValidateTransferGatewaySetting(disabled); err != nil {
		t.Fatalf("disabled gateway config should be valid, got: %v", err)
	}
}

func TestMaskTransferGatewaySettingForAdmin(t *testing.T) {
	masked := MaskTransferGatewaySettingForAdmin(TransferGatewaySetting{
		Enabled:    true,
		PrivateKey: "secret-key",
		APIV3Key:   "abcdefghijklmnopqrstuvwxyz123456",
	})
	if _, exposed := masked["private_key"]; exposed {
		t.Fatalf("private key leaked in masked view")
	}
	if masked["private_key_set"] != true || masked["api_v3_key_set"] != true {
		t.Fatalf("masked flags missing: %+v", masked)
	}
}

func TestNormalizeCaptchaSettingMap(t *testing.T) {
	result := normalizeCaptchaSettingMap(map[string]interface{}{
		"provider": "IMAGE",
		"scenes": map[string]interface{}{
			"admin_login": "true",
		},
	})
	if result["provider"] != constants.CaptchaProviderImage {
		t.Fatalf("provider not normalized: %v", result["provider"])
	}
	scenes := toStringAnyMap(result["scenes"])
	if scenes == nil || readBool(scenes, "admin_login", false) != true {
		t.Fatalf("scenes not normalized: %v", result["scenes"])
	}
}
