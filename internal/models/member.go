package models

import (
	"time"

	"gorm.io/gorm"
)

// Member 分销会员表
// 佣金三个桶（total/available/frozen）仅允许余额服务在行锁事务内修改。
type Member struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                              // 主键
	Username            string         `gorm:"uniqueIndex;not null" json:"username"`                              // 会员账号
	Nickname            string         `gorm:"default:''" json:"nickname"`                                        // 昵称
	Status              string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`    // 账号状态
	TotalCommission     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_commission"`     // 累计确认佣金
	AvailableCommission Money          `gorm:"type:decimal(20,2);not null;default:0" json:"available_commission"` // 可提现佣金
	FrozenCommission    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"frozen_commission"`    // 提现冻结佣金
	Points              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"points"`               // 积分（由积分模块维护）
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                           // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间
}

// TableName 指定表名
func (Member) TableName() string {
	return "members"
}
