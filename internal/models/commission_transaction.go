package models

import "time"

// CommissionTransaction 佣金余额流水表
// 每次余额桶变动写入一条，reference 唯一索引用于幂等去重。
type CommissionTransaction struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                          // 主键
	MemberID        uint      `gorm:"not null;index" json:"member_id"`                               // 会员ID
	Type            string    `gorm:"type:varchar(32);not null;index" json:"type"`                   // 流水类型
	Amount          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`           // 变动金额
	AvailableBefore Money     `gorm:"type:decimal(20,2);not null;default:0" json:"available_before"` // 变动前可用佣金
	AvailableAfter  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"available_after"`  // 变动后可用佣金
	FrozenBefore    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"frozen_before"`    // 变动前冻结佣金
	FrozenAfter     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"frozen_after"`     // 变动后冻结佣金
	Reference       string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"`       // 业务唯一引用
	Remark          string    `gorm:"type:varchar(255);not null;default:''" json:"remark"`           // 备注
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
}

// TableName 指定表名
func (CommissionTransaction) TableName() string {
	return "commission_transactions"
}
