package public

import (
	"time"

	"github.com/settle-next/internal/cache"
	"github.com/settle-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取全局公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"languages": []string{"zh-CN", "en-US"},
	}

	if h.CaptchaService != nil {
		publicCaptcha, err := h.CaptchaService.GetPublicSetting()
		if err != nil {
			respondError(c, response.CodeInternal, "error.list_failed", err)
			return
		}
		data["captcha"] = publicCaptcha
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}
