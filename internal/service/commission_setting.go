package service

import (
	"fmt"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"
)

const (
	commissionRateMin        = 0
	commissionRateMax        = 1
	commissionConfirmDaysMin = 0
	commissionConfirmDaysMax = 3650
)

// CommissionSetting 佣金比例配置
// 每种佣金类型一个必填数值比例（0-1），写入时校验，读取不再兜底解释。
type CommissionSetting struct {
	DirectRate             float64 `json:"direct_rate"`
	IndirectRate           float64 `json:"indirect_rate"`
	DistributorRate        float64 `json:"distributor_rate"`
	NetworkDistributorRate float64 `json:"network_distributor_rate"`
	ConfirmDelayDays       int     `json:"confirm_delay_days"`
}

// CommissionDefaultSetting 默认佣金比例配置
func CommissionDefaultSetting() CommissionSetting {
	return NormalizeCommissionSetting(CommissionSetting{
		DirectRate:             0,
		IndirectRate:           0,
		DistributorRate:        0,
		NetworkDistributorRate: 0,
		ConfirmDelayDays:       0,
	})
}

// NormalizeCommissionSetting 归一化佣金比例配置
func NormalizeCommissionSetting(setting CommissionSetting) CommissionSetting {
	setting.DirectRate = clampCommissionRate(setting.DirectRate)
	setting.IndirectRate = clampCommissionRate(setting.IndirectRate)
	setting.DistributorRate = clampCommissionRate(setting.DistributorRate)
	setting.NetworkDistributorRate = clampCommissionRate(setting.NetworkDistributorRate)

	if setting.ConfirmDelayDays < commissionConfirmDaysMin {
		setting.ConfirmDelayDays = commissionConfirmDaysMin
	}
	if setting.ConfirmDelayDays > commissionConfirmDaysMax {
		setting.ConfirmDelayDays = commissionConfirmDaysMax
	}
	return setting
}

// ValidateCommissionSetting 校验佣金比例配置
func ValidateCommissionSetting(setting CommissionSetting) error {
	rates := map[string]float64{
		"直推比例":   setting.DirectRate,
		"间推比例":   setting.IndirectRate,
		"分销商比例":  setting.DistributorRate,
		"网络分销比例": setting.NetworkDistributorRate,
	}
	for name, rate := range rates {
		if rate < commissionRateMin || rate > commissionRateMax {
			return fmt.Errorf("%w: %s必须在 0-1 之间", ErrCommissionConfigInvalid, name)
		}
	}
	if setting.ConfirmDelayDays < commissionConfirmDaysMin || setting.ConfirmDelayDays > commissionConfirmDaysMax {
		return fmt.Errorf("%w: 佣金确认天数必须在 0-3650 之间", ErrCommissionConfigInvalid)
	}
	return nil
}

// RateForType 返回指定佣金类型的比例
func (c CommissionSetting) RateForType(commissionType string) (float64, bool) {
	switch commissionType {
	case constants.CommissionTypeDirect:
		return c.DirectRate, true
	case constants.CommissionTypeIndirect:
		return c.IndirectRate, true
	case constants.CommissionTypeDistributor:
		return c.DistributorRate, true
	case constants.CommissionTypeNetworkDistributor:
		return c.NetworkDistributorRate, true
	default:
		return 0, false
	}
}

// CommissionSettingToMap 转换为 settings 存储结构
func CommissionSettingToMap(setting CommissionSetting) map[string]interface{} {
	normalized := NormalizeCommissionSetting(setting)
	return map[string]interface{}{
		"direct_rate":              normalized.DirectRate,
		"indirect_rate":            normalized.IndirectRate,
		"distributor_rate":         normalized.DistributorRate,
		"network_distributor_rate": normalized.NetworkDistributorRate,
		"confirm_delay_days":       normalized.ConfirmDelayDays,
	}
}

func commissionSettingFromJSON(raw models.JSON, fallback CommissionSetting) CommissionSetting {
	result := fallback

	if rateRaw, ok := raw["direct_rate"]; ok {
		if parsed, err := parseSettingFloat(rateRaw); err == nil {
			result.DirectRate = parsed
		}
	}
	if rateRaw, ok := raw["indirect_rate"]; ok {
		if parsed, err := parseSettingFloat(rateRaw); err == nil {
			result.IndirectRate = parsed
		}
	}
	if rateRaw, ok := raw["distributor_rate"]; ok {
		if parsed, err := parseSettingFloat(rateRaw); err == nil {
			result.DistributorRate = parsed
		}
	}
	if rateRaw, ok := raw["network_distributor_rate"]; ok {
		if parsed, err := parseSettingFloat(rateRaw); err == nil {
			result.NetworkDistributorRate = parsed
		}
	}
	if confirmDaysRaw, ok := raw["confirm_delay_days"]; ok {
		if parsed, err := parseSettingInt(confirmDaysRaw); err == nil {
			result.ConfirmDelayDays = parsed
		}
	}

	return NormalizeCommissionSetting(result)
}

func normalizeCommissionSettingMap(value map[string]interface{}) models.JSON {
	setting := commissionSettingFromJSON(models.JSON(value), CommissionDefaultSetting())
	return models.JSON(CommissionSettingToMap(setting))
}

// GetCommissionSetting 获取佣金比例设置（优先 settings，空时回退默认）
func (s *SettingService) GetCommissionSetting() (CommissionSetting, error) {
	fallback := CommissionDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyCommissionConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return commissionSettingFromJSON(value, fallback), nil
}

// UpdateCommissionSetting 更新佣金比例设置
func (s *SettingService) UpdateCommissionSetting(setting CommissionSetting) (CommissionSetting, error) {
	normalized := NormalizeCommissionSetting(setting)
	if err := ValidateCommissionSetting(normalized); err != nil {
		return CommissionDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyCommissionConfig, CommissionSettingToMap(normalized)); err != nil {
		return CommissionDefaultSetting(), err
	}
	return normalized, nil
}

func clampCommissionRate(rate float64) float64 {
	if rate < commissionRateMin {
		return commissionRateMin
	}
	if rate > commissionRateMax {
		return commissionRateMax
	}
	return rate
}
