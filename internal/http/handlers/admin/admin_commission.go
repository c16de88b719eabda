package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/repository"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetCommissionStats 获取佣金结算统计
func (h *Handler) GetCommissionStats(c *gin.Context) {
	stats, err := h.CommissionService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}
	response.Success(c, stats)
}

// GetAdminCommissions 获取佣金结算记录列表
func (h *Handler) GetAdminCommissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	memberID, _ := strconv.ParseUint(c.Query("member_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)

	rows, total, err := h.CommissionService.ListCalculations(repository.CommissionListFilter{
		Page:              page,
		PageSize:          pageSize,
		RecipientMemberID: uint(memberID),
		OrderID:           uint(orderID),
		CommissionType:    c.Query("type"),
		Status:            c.Query("status"),
		Keyword:           c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.list_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, rows, pagination)
}

// GetAdminCommission 获取佣金结算记录详情
func (h *Handler) GetAdminCommission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	row, err := h.CommissionService.GetCalculation(id)
	if err != nil {
		if errors.Is(err, service.ErrCommissionNotFound) {
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.detail_failed", err)
		return
	}
	response.Success(c, row)
}

// CreateCommissionRequest 创建佣金结算记录请求
type CreateCommissionRequest struct {
	OrderID           uint    `json:"order_id" binding:"required"`
	RecipientMemberID uint    `json:"recipient_member_id" binding:"required"`
	PayerMemberID     uint    `json:"payer_member_id"`
	CommissionType    string  `json:"commission_type" binding:"required"`
	OrderAmount       float64 `json:"order_amount" binding:"required"`
	CommissionRate    float64 `json:"commission_rate"`
}

// CreateCommission 创建佣金结算记录
func (h *Handler) CreateCommission(c *gin.Context) {
	var req CreateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	row, err := h.CommissionService.CreateCalculation(service.CommissionCreateInput{
		OrderID:           req.OrderID,
		RecipientMemberID: req.RecipientMemberID,
		PayerMemberID:     req.PayerMemberID,
		CommissionType:    req.CommissionType,
		OrderAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(req.OrderAmount)),
		CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(req.CommissionRate)),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommissionInvalid):
			respondError(c, response.CodeBadRequest, "error.commission_invalid", nil)
		case errors.Is(err, service.ErrCommissionExists):
			respondError(c, response.CodeBadRequest, "error.commission_invalid", err)
		case errors.Is(err, service.ErrMemberNotFound):
			respondError(c, response.CodeNotFound, "error.member_not_found", nil)
		case errors.Is(err, service.ErrMemberDisabled):
			respondError(c, response.CodeBadRequest, "error.member_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.operation_failed", err)
		}
		return
	}
	response.Success(c, row)
}

// OrderAccrualRecipient 订单分润受益人
type OrderAccrualRecipient struct {
	MemberID       uint   `json:"member_id" binding:"required"`
	CommissionType string `json:"commission_type" binding:"required"`
}

// CreateOrderAccrualRequest 订单分润入账请求
type CreateOrderAccrualRequest struct {
	OrderID       uint                    `json:"order_id" binding:"required"`
	PayerMemberID uint                    `json:"payer_member_id"`
	OrderAmount   float64                 `json:"order_amount" binding:"required"`
	Recipients    []OrderAccrualRecipient `json:"recipients" binding:"required"`
}

// CreateOrderAccrual 按当前比例配置为订单生成整条分润链路
// 队列可用时异步投递，否则同步落库。
func (h *Handler) CreateOrderAccrual(c *gin.Context) {
	var req CreateOrderAccrualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	orderAmount := decimal.NewFromFloat(req.OrderAmount).Round(2)
	if orderAmount.LessThanOrEqual(decimal.Zero) {
		respondError(c, response.CodeBadRequest, "error.commission_invalid", nil)
		return
	}

	if h.QueueClient.Enabled() {
		recipients := make([]queue.OrderCommissionRecipient, 0, len(req.Recipients))
		for _, item := range req.Recipients {
			recipients = append(recipients, queue.OrderCommissionRecipient{
				MemberID:       item.MemberID,
				CommissionType: strings.TrimSpace(item.CommissionType),
			})
		}
		if err := h.QueueClient.EnqueueOrderCommission(queue.OrderCommissionPayload{
			OrderID:       req.OrderID,
			PayerMemberID: req.PayerMemberID,
			OrderAmount:   orderAmount.StringFixed(2),
			Recipients:    recipients,
		}, 0); err == nil {
			response.Success(c, gin.H{"queued": true})
			return
		} else {
			requestLog(c).Warnw("admin_order_accrual_enqueue_failed", "order_id", req.OrderID, "error", err)
		}
	}

	recipients := make([]service.CommissionRecipient, 0, len(req.Recipients))
	for _, item := range req.Recipients {
		recipients = append(recipients, service.CommissionRecipient{
			MemberID:       item.MemberID,
			CommissionType: strings.TrimSpace(item.CommissionType),
		})
	}
	if err := h.CommissionService.CreateOrderCalculations(req.OrderID, req.PayerMemberID, models.NewMoneyFromDecimal(orderAmount), recipients); err != nil {
		respondError(c, response.CodeInternal, "error.operation_failed", err)
		return
	}
	response.Success(c, gin.H{"queued": false})
}

// ConfirmCommission 确认佣金结算（入账可用佣金）
func (h *Handler) ConfirmCommission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	row, err := h.CommissionService.Confirm(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommissionNotFound):
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
		case errors.Is(err, service.ErrCommissionStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.commission_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.operation_failed", err)
		}
		return
	}
	response.Success(c, row)
}

// CancelCommission 取消佣金结算
func (h *Handler) CancelCommission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	row, err := h.CommissionService.Cancel(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommissionNotFound):
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
		case errors.Is(err, service.ErrCommissionStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.commission_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.operation_failed", err)
		}
		return
	}
	response.Success(c, row)
}
