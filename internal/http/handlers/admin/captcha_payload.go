package admin

import (
	handlershared "github.com/settle-next/internal/http/handlers/shared"
	"github.com/settle-next/internal/service"
)

// CaptchaPayloadRequest 管理端验证码请求载荷
type CaptchaPayloadRequest struct {
	handlershared.CaptchaPayloadRequest
}

func (r CaptchaPayloadRequest) toServicePayload() service.CaptchaVerifyPayload {
	return r.ToServicePayload()
}
