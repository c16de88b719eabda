package repository

import (
	"errors"
	"strings"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberRepository 会员数据访问接口
type MemberRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormMemberRepository

	GetByID(id uint) (*models.Member, error)
	GetByIDForUpdate(id uint) (*models.Member, error)
	GetByUsername(username string) (*models.Member, error)
	Create(member *models.Member) error
	Update(member *models.Member) error
	List(filter MemberListFilter) ([]models.Member, int64, error)

	CreateTransaction(txn *models.CommissionTransaction) error
	GetTransactionByReference(reference string) (*models.CommissionTransaction, error)
	ListTransactions(filter CommissionTransactionListFilter) ([]models.CommissionTransaction, int64, error)
}

// GormMemberRepository GORM 会员仓储
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储
func NewMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMemberRepository) WithTx(tx *gorm.DB) *GormMemberRepository {
	if tx == nil {
		return r
	}
	return &GormMemberRepository{db: tx}
}

// Transaction 执行事务
func (r *GormMemberRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取会员
func (r *GormMemberRepository) GetByID(id uint) (*models.Member, error) {
	if id == 0 {
		return nil, nil
	}
	var member models.Member
	if err := r.db.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetByIDForUpdate 按ID加锁获取会员
func (r *GormMemberRepository) GetByIDForUpdate(id uint) (*models.Member, error) {
	if id == 0 {
		return nil, nil
	}
	var member models.Member
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetByUsername 按账号获取会员
func (r *GormMemberRepository) GetByUsername(username string) (*models.Member, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var member models.Member
	if err := r.db.Where("username = ?", username).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// Create 创建会员
func (r *GormMemberRepository) Create(member *models.Member) error {
	return r.db.Create(member).Error
}

// Update 更新会员
func (r *GormMemberRepository) Update(member *models.Member) error {
	return r.db.Save(member).Error
}

// List 分页查询会员
func (r *GormMemberRepository) List(filter MemberListFilter) ([]models.Member, int64, error) {
	query := r.db.Model(&models.Member{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"username", "nickname"})
		query = query.Where("("+condition+")", repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Member
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CreateTransaction 创建佣金余额流水
func (r *GormMemberRepository) CreateTransaction(txn *models.CommissionTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按业务引用获取流水
func (r *GormMemberRepository) GetTransactionByReference(reference string) (*models.CommissionTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.CommissionTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions 分页查询佣金余额流水
func (r *GormMemberRepository) ListTransactions(filter CommissionTransactionListFilter) ([]models.CommissionTransaction, int64, error) {
	query := r.db.Model(&models.CommissionTransaction{})
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if txnType := strings.TrimSpace(filter.Type); txnType != "" {
		query = query.Where("type = ?", txnType)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.CommissionTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
