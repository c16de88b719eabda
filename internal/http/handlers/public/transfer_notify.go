package public

import (
	"io"
	"net/http"
	"strings"

	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TransferNotify 微信商家转账回调。
// 验签失败或处理失败时返回 FAIL，微信侧会按自身策略重试；
// 重复通知由业务层的终态保护吸收，这里直接回 SUCCESS。
func (h *Handler) TransferNotify(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("transfer_notify_body_read_failed", "error", err)
		respondTransferNotify(c, false)
		return
	}
	log.Infow("transfer_notify_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"wechatpay_timestamp", strings.TrimSpace(c.GetHeader("Wechatpay-Timestamp")),
		"wechatpay_nonce", truncateNotifyLogValue(strings.TrimSpace(c.GetHeader("Wechatpay-Nonce"))),
		"wechatpay_serial", strings.TrimSpace(c.GetHeader("Wechatpay-Serial")),
	)

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}

	result, err := h.WithdrawalService.VerifyTransferWebhook(c.Request.Context(), headers, body)
	if err != nil {
		log.Warnw("transfer_notify_verify_failed", "error", err)
		respondTransferNotify(c, false)
		return
	}

	if err := h.WithdrawalService.HandleTransferResult(service.TransferResultNotice{
		OutBillNo:  result.OutBillNo,
		BillNo:     result.BillNo,
		State:      result.State,
		FailReason: result.FailReason,
	}); err != nil {
		log.Warnw("transfer_notify_handle_failed",
			"out_bill_no", result.OutBillNo,
			"state", result.State,
			"error", err,
		)
		respondTransferNotify(c, false)
		return
	}

	log.Infow("transfer_notify_processed",
		"out_bill_no", result.OutBillNo,
		"bill_no", result.BillNo,
		"state", result.State,
	)
	respondTransferNotify(c, true)
}

func respondTransferNotify(c *gin.Context, success bool) {
	if success {
		c.JSON(http.StatusOK, gin.H{
			"code":    "SUCCESS",
			"message": "成功",
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    "FAIL",
		"message": "失败",
	})
}

func truncateNotifyLogValue(raw string) string {
	const limit = 24
	if len(raw) <= limit {
		return raw
	}
	return raw[:limit] + "..."
}
