package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest 提现申请表
// 申请金额在创建时从可用佣金转入冻结佣金，终态前一直保持冻结。
type WithdrawalRequest struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                        // 主键
	WithdrawalNo     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"withdrawal_no"`  // 提现单号
	MemberID         uint           `gorm:"not null;index" json:"member_id"`                             // 会员ID
	Amount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`         // 提现金额
	AccountType      string         `gorm:"type:varchar(20);not null" json:"account_type"`               // 收款账户类型
	AccountName      string         `gorm:"type:varchar(100);not null;default:''" json:"account_name"`   // 收款人姓名
	AccountNumber    string         `gorm:"type:varchar(100);not null;default:''" json:"account_number"` // 收款账号
	BankName         string         `gorm:"type:varchar(100);not null;default:''" json:"bank_name"`      // 开户银行
	Status           string         `gorm:"type:varchar(20);not null;index" json:"status"`               // 提现状态
	AutoApproved     bool           `gorm:"not null;default:false" json:"auto_approved"`                 // 是否自动审核通过
	AdminRemark      string         `gorm:"type:varchar(500);not null;default:''" json:"admin_remark"`   // 管理员备注
	TransferBillNo   string         `gorm:"type:varchar(128);index" json:"transfer_bill_no"`             // 网关转账单号
	ProcessedBy      *uint          `gorm:"index" json:"processed_by,omitempty"`                         // 处理管理员ID
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`                                      // 处理时间
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`                                      // 完成时间
	TransferFailedAt *time.Time     `json:"transfer_failed_at,omitempty"`                                // 最近一次网关转账失败时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Member Member `gorm:"foreignKey:MemberID" json:"member,omitempty"` // 会员
}

// TableName 指定表名
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
