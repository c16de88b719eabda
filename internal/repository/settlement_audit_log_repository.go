package repository

import (
	"strings"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
)

// SettlementAuditLogRepository 结算审计日志数据访问接口
type SettlementAuditLogRepository interface {
	Create(log *models.SettlementAuditLog) error
	WithTx(tx *gorm.DB) *GormSettlementAuditLogRepository
	List(filter SettlementAuditLogListFilter) ([]models.SettlementAuditLog, int64, error)
}

// GormSettlementAuditLogRepository GORM 实现
type GormSettlementAuditLogRepository struct {
	db *gorm.DB
}

// NewSettlementAuditLogRepository 创建结算审计日志仓库
func NewSettlementAuditLogRepository(db *gorm.DB) *GormSettlementAuditLogRepository {
	return &GormSettlementAuditLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSettlementAuditLogRepository) WithTx(tx *gorm.DB) *GormSettlementAuditLogRepository {
	if tx == nil {
		return r
	}
	return &GormSettlementAuditLogRepository{db: tx}
}

// Create 写入审计日志
func (r *GormSettlementAuditLogRepository) Create(log *models.SettlementAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 分页查询审计日志
func (r *GormSettlementAuditLogRepository) List(filter SettlementAuditLogListFilter) ([]models.SettlementAuditLog, int64, error) {
	query := r.db.Model(&models.SettlementAuditLog{})
	if filter.WithdrawalID != 0 {
		query = query.Where("withdrawal_id = ?", filter.WithdrawalID)
	}
	if filter.OperatorAdminID != 0 {
		query = query.Where("operator_admin_id = ?", filter.OperatorAdminID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", action)
	}
	if filter.OverrideOnly {
		query = query.Where("override = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.SettlementAuditLog
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
