package admin

import (
	"errors"
	"strings"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetSettings 按 key 获取原始设置
func (h *Handler) GetSettings(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}
	if value == nil {
		response.Success(c, gin.H{})
		return
	}
	response.Success(c, value)
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	Key   string                 `json:"key" binding:"required"`
	Value map[string]interface{} `json:"value" binding:"required"`
}

// UpdateSettings 按 key 更新原始设置
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	value, err := h.SettingService.Update(req.Key, req.Value)
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}
	response.Success(c, value)
}

// GetWithdrawSettings 获取提现自动审核配置
func (h *Handler) GetWithdrawSettings(c *gin.Context) {
	setting, err := h.SettingService.GetWithdrawSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}
	response.Success(c, service.WithdrawSettingToMap(setting))
}

// UpdateWithdrawSettingsRequest 更新提现自动审核配置请求
type UpdateWithdrawSettingsRequest struct {
	Enabled   bool         `json:"enabled"`
	MaxAmount models.Money `json:"max_amount"`
}

// UpdateWithdrawSettings 更新提现自动审核配置
func (h *Handler) UpdateWithdrawSettings(c *gin.Context) {
	var req UpdateWithdrawSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateWithdrawSetting(service.WithdrawSetting{
		Enabled:   req.Enabled,
		MaxAmount: req.MaxAmount,
	})
	if err != nil {
		if errors.Is(err, service.ErrWithdrawConfigInvalid) {
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}
	response.Success(c, service.WithdrawSettingToMap(setting))
}

// GetCommissionSettings 获取佣金比例配置
func (h *Handler) GetCommissionSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCommissionSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}
	response.Success(c, service.CommissionSettingToMap(setting))
}

// UpdateCommissionSettingsRequest 更新佣金比例配置请求
type UpdateCommissionSettingsRequest struct {
	DirectRate             float64 `json:"direct_rate"`
	IndirectRate           float64 `json:"indirect_rate"`
	DistributorRate        float64 `json:"distributor_rate"`
	NetworkDistributorRate float64 `json:"network_distributor_rate"`
	ConfirmDelayDays       int     `json:"confirm_delay_days"`
}

// UpdateCommissionSettings 更新佣金比例配置
func (h *Handler) UpdateCommissionSettings(c *gin.Context) {
	var req UpdateCommissionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateCommissionSetting(service.CommissionSetting{
		DirectRate:             req.DirectRate,
		IndirectRate:           req.IndirectRate,
		DistributorRate:        req.DistributorRate,
		NetworkDistributorRate: req.NetworkDistributorRate,
		ConfirmDelayDays:       req.ConfirmDelayDays,
	})
	if err != nil {
		if errors.Is(err, service.ErrCommissionConfigInvalid) {
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}
	response.Success(c, service.CommissionSettingToMap(setting))
}

// GetTransferGatewaySettings 获取转账网关配置（脱敏）
func (h *Handler) GetTransferGatewaySettings(c *gin.Context) {
	setting, err := h.SettingService.GetTransferGatewaySetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}
	response.Success(c, service.MaskTransferGatewaySettingForAdmin(setting))
}

// UpdateTransferGatewaySettingsRequest 更新转账网关配置请求
// 密钥字段留空表示保留已保存的值。
type UpdateTransferGatewaySettingsRequest struct {
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

// UpdateTransferGatewaySettings 更新转账网关配置
func (h *Handler) UpdateTransferGatewaySettings(c *gin.Context) {
	var req UpdateTransferGatewaySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	current, err := h.SettingService.GetTransferGatewaySetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}

	next := service.TransferGatewaySetting{
		Enabled:        req.Enabled,
		Provider:       req.Provider,
		MchID:          req.MchID,
		CertSerialNo:   req.CertSerialNo,
		PrivateKey:     strings.TrimSpace(req.PrivateKey),
		APIV3Key:       strings.TrimSpace(req.APIV3Key),
		AppID:          req.AppID,
		NotifyURL:      req.NotifyURL,
		TimeoutSeconds: req.TimeoutSeconds,
	}
	if next.PrivateKey == "" {
		next.PrivateKey = current.PrivateKey
	}
	if next.APIV3Key == "" {
		next.APIV3Key = current.APIV3Key
	}

	setting, err := h.SettingService.UpdateTransferGatewaySetting(next)
	if err != nil {
		if errors.Is(err, service.ErrTransferGatewayConfigInvalid) {
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}
	response.Success(c, service.MaskTransferGatewaySettingForAdmin(setting))
}

// GetCaptchaSettings 获取验证码配置
func (h *Handler) GetCaptchaSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCaptchaSetting(h.Config.Captcha)
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}
	response.Success(c, service.CaptchaSettingToMap(setting))
}

// UpdateCaptchaSettingsRequest 更新验证码配置请求
type UpdateCaptchaSettingsRequest struct {
	Provider string `json:"provider"`
	Scenes   struct {
		AdminLogin bool `json:"admin_login"`
	} `json:"scenes"`
	Image struct {
		Length        int `json:"length"`
		Width         int `json:"width"`
		Height        int `json:"height"`
		NoiseCount    int `json:"noise_count"`
		ShowLine      int `json:"show_line"`
		ExpireSeconds int `json:"expire_seconds"`
		MaxStore      int `json:"max_store"`
	} `json:"image"`
}

// UpdateCaptchaSettings 更新验证码配置
func (h *Handler) UpdateCaptchaSettings(c *gin.Context) {
	var req UpdateCaptchaSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateCaptchaSetting(service.CaptchaSetting{
		Provider: req.Provider,
		Scenes: service.CaptchaSceneSetting{
			AdminLogin: req.Scenes.AdminLogin,
		},
		Image: service.CaptchaImageSetting{
			Length:        req.Image.Length,
			Width:         req.Image.Width,
			Height:        req.Image.Height,
			NoiseCount:    req.Image.NoiseCount,
			ShowLine:      req.Image.ShowLine,
			ExpireSeconds: req.Image.ExpireSeconds,
			MaxStore:      req.Image.MaxStore,
		},
	})
	if err != nil {
		if errors.Is(err, service.ErrCaptchaConfigInvalid) {
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}

	h.Config.Captcha = service.CaptchaSettingToConfig(setting)
	if h.CaptchaService != nil {
		h.CaptchaService.SetDefaultConfig(h.Config.Captcha)
		h.CaptchaService.InvalidateCache()
	}

	response.Success(c, service.CaptchaSettingToMap(setting))
}
