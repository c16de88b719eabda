package models

import (
	"time"

	"gorm.io/gorm"
)

// CommissionCalculation 佣金结算记录
// 状态只允许 pending → confirmed 或 pending → cancelled，终态不可再变更。
type CommissionCalculation struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                                                     // 主键
	OrderID           uint           `gorm:"not null;index;index:idx_commission_calculation_unique,unique" json:"order_id"`                            // 订单ID
	RecipientMemberID uint           `gorm:"not null;index;index:idx_commission_calculation_unique,unique" json:"recipient_member_id"`                 // 受益会员ID
	PayerMemberID     uint           `gorm:"index" json:"payer_member_id"`                                                                             // 下单会员ID
	CommissionType    string         `gorm:"type:varchar(32);not null;index;index:idx_commission_calculation_unique,unique" json:"commission_type"`    // 佣金类型
	OrderAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"order_amount"`                                                // 订单金额
	CommissionRate    Money          `gorm:"type:decimal(10,4);not null;default:0" json:"commission_rate"`                                             // 佣金比例（0-1）
	CommissionAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`                                           // 佣金金额
	Status            string         `gorm:"type:varchar(20);not null;index" json:"status"`                                                            // 结算状态
	CalculationDate   time.Time      `gorm:"index" json:"calculation_date"`                                                                            // 计算时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                                                  // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                                                                  // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                                                           // 软删除时间

	Recipient Member `gorm:"foreignKey:RecipientMemberID" json:"recipient,omitempty"` // 受益会员
}

// TableName 指定表名
func (CommissionCalculation) TableName() string {
	return "commission_calculations"
}
