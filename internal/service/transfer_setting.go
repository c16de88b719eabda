package service

import (
	"fmt"
	"strings"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"
)

// TransferGatewaySetting 转账网关配置
type TransferGatewaySetting struct {
	Enabled        bool   `json:"enabled"`
	Provider       string `json:"provider"`
	MchID          string `json:"mch_id"`
	CertSerialNo   string `json:"cert_serial_no"`
	PrivateKey     string `json:"private_key"`
	APIV3Key       string `json:"api_v3_key"`
	AppID          string `json:"app_id"`
	NotifyURL      string `json:"notify_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// TransferGatewayDefaultSetting 默认转账网关配置
func TransferGatewayDefaultSetting() TransferGatewaySetting {
	return NormalizeTransferGatewaySetting(TransferGatewaySetting{
		Enabled:        false,
		Provider:       constants.TransferProviderWechatpay,
		TimeoutSeconds: 10,
	})
}

// NormalizeTransferGatewaySetting 归一化转账网关配置
func NormalizeTransferGatewaySetting(setting TransferGatewaySetting) TransferGatewaySetting {
	setting.Provider = strings.ToLower(strings.TrimSpace(setting.Provider))
	if setting.Provider == "" {
		setting.Provider = constants.TransferProviderWechatpay
	}
	setting.MchID = strings.TrimSpace(setting.MchID)
	setting.CertSerialNo = strings.TrimSpace(setting.CertSerialNo)
	setting.PrivateKey = strings.TrimSpace(setting.PrivateKey)
	setting.APIV3Key = strings.TrimSpace(setting.APIV3Key)
	setting.AppID = strings.TrimSpace(setting.AppID)
	setting.NotifyURL = strings.TrimSpace(setting.NotifyURL)
	if setting.TimeoutSeconds <= 0 {
		setting.TimeoutSeconds = 10
	}
	if setting.TimeoutSeconds > 60 {
		setting.TimeoutSeconds = 60
	}
	return setting
}

// ValidateTransferGatewaySetting 校验转账网关配置
func ValidateTransferGatewaySetting(setting TransferGatewaySetting) error {
	normalized := NormalizeTransferGatewaySetting(setting)
	if normalized.Provider != constants.TransferProviderWechatpay {
		return fmt.Errorf("%w: 不支持的网关类型 %s", ErrTransferGatewayConfigInvalid, normalized.Provider)
	}
	if !normalized.Enabled {
		return nil
	}
	if normalized.MchID == "" {
		return fmt.Errorf("%w: 商户号不能为空", ErrTransferGatewayConfigInvalid)
	}
	if normalized.CertSerialNo == "" {
		return fmt.Errorf("%w: 商户证书序列号不能为空", ErrTransferGatewayConfigInvalid)
	}
	if normalized.PrivateKey == "" {
		return fmt.Errorf("%w: 商户私钥不能为空", ErrTransferGatewayConfigInvalid)
	}
	if len(normalized.APIV3Key) != 32 {
		return fmt.Errorf("%w: APIv3 密钥必须为 32 位", ErrTransferGatewayConfigInvalid)
	}
	if normalized.AppID == "" {
		return fmt.Errorf("%w: AppID 不能为空", ErrTransferGatewayConfigInvalid)
	}
	return nil
}

// TransferGatewaySettingToMap 转换为 settings 存储结构
func TransferGatewaySettingToMap(setting TransferGatewaySetting) map[string]interface{} {
	normalized := NormalizeTransferGatewaySetting(setting)
	return map[string]interface{}{
		"enabled":         normalized.Enabled,
		"provider":        normalized.Provider,
		"mch_id":          normalized.MchID,
		"cert_serial_no":  normalized.CertSerialNo,
		"private_key":     normalized.PrivateKey,
		"api_v3_key":      normalized.APIV3Key,
		"app_id":          normalized.AppID,
		"notify_url":      normalized.NotifyURL,
		"timeout_seconds": normalized.TimeoutSeconds,
	}
}

// MaskTransferGatewaySettingForAdmin 返回后台展示用脱敏配置，密钥只下发是否已配置
func MaskTransferGatewaySettingForAdmin(setting TransferGatewaySetting) map[string]interface{} {
	normalized := NormalizeTransferGatewaySetting(setting)
	return map[string]interface{}{
		"enabled":         normalized.Enabled,
		"provider":        normalized.Provider,
		"mch_id":          normalized.MchID,
		"cert_serial_no":  normalized.CertSerialNo,
		"private_key_set": normalized.PrivateKey != "",
		"api_v3_key_set":  normalized.APIV3Key != "",
		"app_id":          normalized.AppID,
		"notify_url":      normalized.NotifyURL,
		"timeout_seconds": normalized.TimeoutSeconds,
	}
}

func transferGatewaySettingFromJSON(raw models.JSON, fallback TransferGatewaySetting) TransferGatewaySetting {
	result := fallback

	if enabledRaw, ok := raw["enabled"]; ok {
		result.Enabled = parseSettingBool(enabledRaw)
	}
	if providerRaw, ok := raw["provider"]; ok {
		result.Provider = normalizeSettingText(providerRaw)
	}
	if mchIDRaw, ok := raw["mch_id"]; ok {
		result.MchID = normalizeSettingText(mchIDRaw)
	}
	if serialRaw, ok := raw["cert_serial_no"]; ok {
		result.CertSerialNo = normalizeSettingText(serialRaw)
	}
	if keyRaw, ok := raw["private_key"]; ok {
		if text, isText := keyRaw.(string); isText {
			result.PrivateKey = strings.TrimSpace(text)
		}
	}
	if apiKeyRaw, ok := raw["api_v3_key"]; ok {
		if text, isText := apiKeyRaw.(string); isText {
			result.APIV3Key = strings.TrimSpace(text)
		}
	}
	if appIDRaw, ok := raw["app_id"]; ok {
		result.AppID = normalizeSettingText(appIDRaw)
	}
	if notifyRaw, ok := raw["notify_url"]; ok {
		result.NotifyURL = normalizeSettingText(notifyRaw)
	}
	if timeoutRaw, ok := raw["timeout_seconds"]; ok {
		if parsed, err := parseSettingInt(timeoutRaw); err == nil {
			result.TimeoutSeconds = parsed
		}
	}

	return NormalizeTransferGatewaySetting(result)
}

func normalizeTransferGatewaySettingMap(value map[string]interface{}) models.JSON {
	setting := transferGatewaySettingFromJSON(models.JSON(value), TransferGatewayDefaultSetting())
	return models.JSON(TransferGatewaySettingToMap(setting))
}

// GetTransferGatewaySetting 获取转账网关设置（优先 settings，空时回退默认）
func (s *SettingService) GetTransferGatewaySetting() (TransferGatewaySetting, error) {
	fallback := TransferGatewayDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyTransferGatewayConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return transferGatewaySettingFromJSON(value, fallback), nil
}

// UpdateTransferGatewaySetting 更新转账网关设置
func (s *SettingService) UpdateTransferGatewaySetting(setting TransferGatewaySetting) (TransferGatewaySetting, error) {
	normalized := NormalizeTransferGatewaySetting(setting)
	if err := ValidateTransferGatewaySetting(normalized); err != nil {
		return TransferGatewayDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyTransferGatewayConfig, TransferGatewaySettingToMap(normalized)); err != nil {
		return TransferGatewayDefaultSetting(), err
	}
	return normalized, nil
}
