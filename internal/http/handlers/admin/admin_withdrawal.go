package admin

import (
	"errors"
	"strconv"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"
	"github.com/settle-next/internal/service"
	"github.com/settle-next/internal/transfer"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func getAdminOperator(c *gin.Context) (service.AdminOperator, bool) {
	adminID, ok := getAdminID(c)
	if !ok {
		return service.AdminOperator{}, false
	}
	operator := service.AdminOperator{AdminID: adminID}
	if username, exists := c.Get("username"); exists {
		if name, ok := username.(string); ok {
			operator.Username = name
		}
	}
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			operator.RequestID = id
		}
	}
	return operator, true
}

// GetAdminWithdrawals 获取提现申请列表
func (h *Handler) GetAdminWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	memberID, _ := strconv.ParseUint(c.Query("member_id"), 10, 64)

	rows, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:        page,
		PageSize:    pageSize,
		MemberID:    uint(memberID),
		Status:      c.Query("status"),
		AccountType: c.Query("account_type"),
		Keyword:     c.Query("search"),
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

// GetAdminWithdrawal 获取提现申请详情
func (h *Handler) GetAdminWithdrawal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	row, err := h.WithdrawalService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrWithdrawNotFound) {
			respondError(c, response.CodeNotFound, "error.withdraw_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.detail_failed", err)
		return
	}
	response.Success(c, row)
}

// CreateWithdrawalRequest 代会员创建提现申请请求
type CreateWithdrawalRequest struct {
	MemberID      uint    `json:"member_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	AccountType   string  `json:"account_type" binding:"required"`
	AccountName   string  `json:"account_name"`
	AccountNumber string  `json:"account_number" binding:"required"`
	BankName      string  `json:"bank_name"`
}

// CreateWithdrawal 创建提现申请
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	row, err := h.WithdrawalService.Create(service.WithdrawalCreateInput{
		MemberID:      req.MemberID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(req.Amount)),
		AccountType:   req.AccountType,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawAmountInvalid):
			respondError(c, response.CodeBadRequest, "error.withdraw_amount_invalid", nil)
		case errors.Is(err, service.ErrWithdrawAccountInvalid):
			respondError(c, response.CodeBadRequest, "error.withdraw_account_invalid", nil)
		case errors.Is(err, service.ErrMemberNotFound):
			respondError(c, response.CodeNotFound, "error.member_not_found", nil)
		case errors.Is(err, service.ErrMemberDisabled):
			respondError(c, response.CodeBadRequest, "error.member_disabled", nil)
		case errors.Is(err, service.ErrBalanceInsufficient):
			respondError(c, response.CodeBadRequest, "error.balance_insufficient", nil)
		default:
			respondError(c, response.CodeInternal, "error.operation_failed", err)
		}
		return
	}
	response.Success(c, row)
}

// WithdrawalReviewRequest 提现审核请求
type WithdrawalReviewRequest struct {
	Remark string `json:"remark"`
}

// ApproveWithdrawal 审核通过提现申请
func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	h.reviewWithdrawal(c, h.WithdrawalService.Approve)
}

// RejectWithdrawal 驳回提现申请（冻结金额退回可用）
func (h *Handler) RejectWithdrawal(c *gin.Context) {
	h.reviewWithdrawal(c, h.WithdrawalService.Reject)
}

// CompleteWithdrawal 确认打款完成（冻结金额永久扣减）
func (h *Handler) CompleteWithdrawal(c *gin.Context) {
	h.reviewWithdrawal(c, h.WithdrawalService.Complete)
}

func (h *Handler) reviewWithdrawal(c *gin.Context, action func(service.AdminOperator, uint, string) (*models.WithdrawalRequest, error)) {
	operator, ok := getAdminOperator(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// remark 可为空，允许空请求体
	var req WithdrawalReviewRequest
	_ = c.ShouldBindJSON(&req)

	row, err := action(operator, id, req.Remark)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawNotFound):
			respondError(c, response.CodeNotFound, "error.withdraw_not_found", nil)
		case errors.Is(err, service.ErrWithdrawStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.withdraw_status_invalid", nil)
		case errors.Is(err, service.ErrBalanceInsufficient):
			respondError(c, response.CodeBadRequest, "error.balance_insufficient", nil)
		default:
			respondError(c, response.CodeInternal, "error.operation_failed", err)
		}
		return
	}
	response.Success(c, row)
}

// CancelWithdrawalTransfer 撤销微信转账
func (h *Handler) CancelWithdrawalTransfer(c *gin.Context) {
	operator, ok := getAdminOperator(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// remark 可为空，允许空请求体
	var req WithdrawalReviewRequest
	_ = c.ShouldBindJSON(&req)

	row, err := h.WithdrawalService.CancelTransfer(c.Request.Context(), operator, id, req.Remark)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawNotFound):
			respondError(c, response.CodeNotFound, "error.withdraw_not_found", nil)
		case errors.Is(err, service.ErrWithdrawStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.withdraw_status_invalid", nil)
		case errors.Is(err, service.ErrWithdrawNotCancellable):
			respondError(c, response.CodeBadRequest, "error.withdraw_not_cancellable", nil)
		case errors.Is(err, service.ErrTransferGatewayDisabled):
			respondError(c, response.CodeBadRequest, "error.transfer_gateway_disabled", nil)
		case errors.Is(err, transfer.ErrRequestFailed):
			respondError(c, response.CodeInternal, "error.transfer_gateway_failed", err)
		default:
			respondError(c, response.CodeInternal, "error.operation_failed", err)
		}
		return
	}
	response.Success(c, row)
}

// GetWithdrawalAuditLogs 获取结算操作审计日志
func (h *Handler) GetWithdrawalAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	withdrawalID, _ := strconv.ParseUint(c.Query("withdrawal_id"), 10, 64)
	operatorID, _ := strconv.ParseUint(c.Query("operator_admin_id"), 10, 64)

	rows, total, err := h.WithdrawalService.ListAuditLogs(repository.SettlementAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		WithdrawalID:    uint(withdrawalID),
		OperatorAdminID: uint(operatorID),
		Action:          c.Query("action"),
		OverrideOnly:    c.Query("override_only") == "true",
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
