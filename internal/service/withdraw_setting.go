package service

import (
	"fmt"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"

	"github.com/shopspring/decimal"
)

var withdrawAutoApproveMaxAmountCap = decimal.NewFromInt(100000000)

// WithdrawSetting 提现自动审核配置
// 提现创建时逐次从 settings 读取，不允许进程内长期缓存。
type WithdrawSetting struct {
	Enabled   bool         `json:"enabled"`
	MaxAmount models.Money `json:"max_amount"`
}

// WithdrawDefaultSetting 默认提现自动审核配置
func WithdrawDefaultSetting() WithdrawSetting {
	return NormalizeWithdrawSetting(WithdrawSetting{Enabled: false})
}

// NormalizeWithdrawSetting 归一化提现自动审核配置
func NormalizeWithdrawSetting(setting WithdrawSetting) WithdrawSetting {
	amount := setting.MaxAmount.Decimal
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(withdrawAutoApproveMaxAmountCap) {
		amount = withdrawAutoApproveMaxAmountCap
	}
	setting.MaxAmount = models.NewMoneyFromDecimal(amount)
	return setting
}

// ValidateWithdrawSetting 校验提现自动审核配置
func ValidateWithdrawSetting(setting WithdrawSetting) error {
	normalized := NormalizeWithdrawSetting(setting)
	if normalized.Enabled && !normalized.MaxAmount.Decimal.IsPositive() {
		return fmt.Errorf("%w: 启用自动审核时上限必须大于 0", ErrWithdrawConfigInvalid)
	}
	return nil
}

// WithdrawSettingToMap 转换为 settings 存储结构，金额以两位小数字符串落库
func WithdrawSettingToMap(setting WithdrawSetting) map[string]interface{} {
	normalized := NormalizeWithdrawSetting(setting)
	return map[string]interface{}{
		"enabled":    normalized.Enabled,
		"max_amount": normalized.MaxAmount.Decimal.StringFixed(2),
	}
}

func withdrawSettingFromJSON(raw models.JSON, fallback WithdrawSetting) WithdrawSetting {
	result := fallback

	if enabledRaw, ok := raw["enabled"]; ok {
		result.Enabled = parseSettingBool(enabledRaw)
	}
	if maxAmountRaw, ok := raw["max_amount"]; ok {
		if parsed, err := parseSettingDecimal(maxAmountRaw); err == nil {
			result.MaxAmount = models.NewMoneyFromDecimal(parsed)
		}
	}

	return NormalizeWithdrawSetting(result)
}

func normalizeWithdrawSettingMap(value map[string]interface{}) models.JSON {
	setting := withdrawSettingFromJSON(models.JSON(value), WithdrawDefaultSetting())
	return models.JSON(WithdrawSettingToMap(setting))
}

// GetWithdrawSetting 获取提现自动审核设置（优先 settings，空时回退默认）
func (s *SettingService) GetWithdrawSetting() (WithdrawSetting, error) {
	fallback := WithdrawDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyWithdrawConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return withdrawSettingFromJSON(value, fallback), nil
}

// UpdateWithdrawSetting 更新提现自动审核设置
func (s *SettingService) UpdateWithdrawSetting(setting WithdrawSetting) (WithdrawSetting, error) {
	normalized := NormalizeWithdrawSetting(setting)
	if err := ValidateWithdrawSetting(normalized); err != nil {
		return WithdrawDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyWithdrawConfig, WithdrawSettingToMap(normalized)); err != nil {
		return WithdrawDefaultSetting(), err
	}
	return normalized, nil
}
