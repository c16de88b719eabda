package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository 佣金结算数据访问接口
type CommissionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCommissionRepository

	Create(calculation *models.CommissionCalculation) error
	Update(calculation *models.CommissionCalculation) error
	GetByID(id uint) (*models.CommissionCalculation, error)
	GetByIDForUpdate(id uint) (*models.CommissionCalculation, error)
	GetByOrderAndRecipient(orderID, recipientID uint, commissionType string) (*models.CommissionCalculation, error)
	List(filter CommissionListFilter) ([]models.CommissionCalculation, int64, error)
	ListPendingDueForUpdate(before time.Time, limit int) ([]models.CommissionCalculation, error)
	StatusAggregates() ([]CommissionStatusAggregate, error)
	TypeAggregates() ([]CommissionTypeAggregate, error)
}

// CommissionStatusAggregate 按状态汇总结果
type CommissionStatusAggregate struct {
	Status string          `gorm:"column:status"`
	Count  int64           `gorm:"column:total_count"`
	Amount decimal.Decimal `gorm:"column:total_amount"`
}

// CommissionTypeAggregate 按类型汇总结果
type CommissionTypeAggregate struct {
	CommissionType string          `gorm:"column:commission_type"`
	Count          int64           `gorm:"column:total_count"`
	Amount         decimal.Decimal `gorm:"column:total_amount"`
}

// GormCommissionRepository GORM 佣金结算仓储
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金结算仓储
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) *GormCommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建结算记录
func (r *GormCommissionRepository) Create(calculation *models.CommissionCalculation) error {
	return r.db.Create(calculation).Error
}

// Update 更新结算记录
func (r *GormCommissionRepository) Update(calculation *models.CommissionCalculation) error {
	return r.db.Save(calculation).Error
}

// GetByID 按ID查询结算记录
func (r *GormCommissionRepository) GetByID(id uint) (*models.CommissionCalculation, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.CommissionCalculation
	if err := r.db.Preload("Recipient").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByIDForUpdate 按ID锁定查询结算记录
func (r *GormCommissionRepository) GetByIDForUpdate(id uint) (*models.CommissionCalculation, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.CommissionCalculation
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByOrderAndRecipient 按订单、受益人与类型查询结算记录
func (r *GormCommissionRepository) GetByOrderAndRecipient(orderID, recipientID uint, commissionType string) (*models.CommissionCalculation, error) {
	if orderID == 0 || recipientID == 0 {
		return nil, nil
	}
	var row models.CommissionCalculation
	if err := r.db.Where("order_id = ? AND recipient_member_id = ? AND commission_type = ?",
		orderID, recipientID, strings.TrimSpace(commissionType)).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 分页查询结算记录
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.CommissionCalculation, int64, error) {
	query := r.db.Model(&models.CommissionCalculation{}).Preload("Recipient")
	if filter.RecipientMemberID != 0 {
		query = query.Where("commission_calculations.recipient_member_id = ?", filter.RecipientMemberID)
	}
	if filter.OrderID != 0 {
		query = query.Where("commission_calculations.order_id = ?", filter.OrderID)
	}
	if ctype := strings.TrimSpace(filter.CommissionType); ctype != "" {
		query = query.Where("commission_calculations.commission_type = ?", ctype)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("commission_calculations.status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.
			Joins("LEFT JOIN members ON members.id = commission_calculations.recipient_member_id").
			Where("(members.username LIKE ? OR members.nickname LIKE ?)", like, like)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("commission_calculations.calculation_date >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("commission_calculations.calculation_date <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.CommissionCalculation
	if err := query.Order("commission_calculations.calculation_date desc, commission_calculations.id desc").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListPendingDueForUpdate 锁定查询到期待确认的结算记录
func (r *GormCommissionRepository) ListPendingDueForUpdate(before time.Time, limit int) ([]models.CommissionCalculation, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.CommissionCalculation
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND calculation_date <= ?", constants.CommissionStatusPending, before).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// StatusAggregates 按状态汇总数量与金额
func (r *GormCommissionRepository) StatusAggregates() ([]CommissionStatusAggregate, error) {
	var rows []CommissionStatusAggregate
	if err := r.db.Model(&models.CommissionCalculation{}).
		Select("status, COUNT(*) AS total_count, COALESCE(SUM(commission_amount), 0) AS total_amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TypeAggregates 按类型汇总数量与金额
func (r *GormCommissionRepository) TypeAggregates() ([]CommissionTypeAggregate, error) {
	var rows []CommissionTypeAggregate
	if err := r.db.Model(&models.CommissionCalculation{}).
		Select("commission_type, COUNT(*) AS total_count, COALESCE(SUM(commission_amount), 0) AS total_amount").
		Group("commission_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
