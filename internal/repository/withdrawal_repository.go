package repository

import (
	"errors"
	"strings"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository 提现申请数据访问接口
type WithdrawalRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWithdrawalRepository

	Create(req *models.WithdrawalRequest) error
	Update(req *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error)
	GetByWithdrawalNo(withdrawalNo string) (*models.WithdrawalRequest, error)
	GetByTransferBillNo(transferBillNo string) (*models.WithdrawalRequest, error)
	GetByTransferBillNoForUpdate(transferBillNo string) (*models.WithdrawalRequest, error)
	List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error)
	ListProcessingWithBillNo(limit int) ([]models.WithdrawalRequest, error)
}

// GormWithdrawalRepository GORM 提现申请仓储
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository 创建提现申请仓储
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) *GormWithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Transaction 执行事务
func (r *GormWithdrawalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建提现申请
func (r *GormWithdrawalRepository) Create(req *models.WithdrawalRequest) error {
	return r.db.Create(req).Error
}

// Update 更新提现申请
func (r *GormWithdrawalRepository) Update(req *models.WithdrawalRequest) error {
	return r.db.Save(req).Error
}

// GetByID 按ID查询提现申请
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Preload("Member").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByIDForUpdate 按ID锁定查询提现申请
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByWithdrawalNo 按提现单号查询提现申请
func (r *GormWithdrawalRepository) GetByWithdrawalNo(withdrawalNo string) (*models.WithdrawalRequest, error) {
	withdrawalNo = strings.TrimSpace(withdrawalNo)
	if withdrawalNo == "" {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Where("withdrawal_no = ?", withdrawalNo).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByTransferBillNo 按网关转账单号查询提现申请
func (r *GormWithdrawalRepository) GetByTransferBillNo(transferBillNo string) (*models.WithdrawalRequest, error) {
	transferBillNo = strings.TrimSpace(transferBillNo)
	if transferBillNo == "" {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Where("transfer_bill_no = ?", transferBillNo).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByTransferBillNoForUpdate 按网关转账单号锁定查询提现申请
func (r *GormWithdrawalRepository) GetByTransferBillNoForUpdate(transferBillNo string) (*models.WithdrawalRequest, error) {
	transferBillNo = strings.TrimSpace(transferBillNo)
	if transferBillNo == "" {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transfer_bill_no = ?", transferBillNo).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 分页查询提现申请
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{}).Preload("Member")

	if filter.MemberID != 0 {
		query = query.Where("withdrawal_requests.member_id = ?", filter.MemberID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("withdrawal_requests.status = ?", status)
	}
	if accountType := strings.TrimSpace(filter.AccountType); accountType != "" {
		query = query.Where("withdrawal_requests.account_type = ?", accountType)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.
			Joins("LEFT JOIN members ON members.id = withdrawal_requests.member_id").
			Where("(members.username LIKE ? OR members.nickname LIKE ? OR withdrawal_requests.withdrawal_no LIKE ? OR withdrawal_requests.account_number LIKE ?)",
				like, like, like, like)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("withdrawal_requests.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("withdrawal_requests.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.WithdrawalRequest
	if err := query.Order("withdrawal_requests.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListProcessingWithBillNo 查询已发起网关转账的处理中提现申请
func (r *GormWithdrawalRepository) ListProcessingWithBillNo(limit int) ([]models.WithdrawalRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.WithdrawalRequest
	if err := r.db.Where("status = ? AND transfer_bill_no <> ''", constants.WithdrawStatusProcessing).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
