package admin

import (
	"errors"
	"strconv"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/repository"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminMembers 获取会员列表
func (h *Handler) GetAdminMembers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.MemberRepo.List(repository.MemberListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("search"),
		Status:   c.Query("status"),
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

// GetAdminMember 获取会员详情（含三个佣金桶余额）
func (h *Handler) GetAdminMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	member, err := h.BalanceService.GetMember(id)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			respondError(c, response.CodeNotFound, "error.member_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.detail_failed", err)
		return
	}
	response.Success(c, member)
}

// GetAdminMemberTransactions 获取会员佣金余额流水
func (h *Handler) GetAdminMemberTransactions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.BalanceService.ListTransactions(repository.CommissionTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: id,
		Type:     c.Query("type"),
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
