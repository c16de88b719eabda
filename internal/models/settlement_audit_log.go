package models

import "time"

// SettlementAuditLog 结算操作审计日志
// 说明：记录提现单上的管理操作；撤销已完成转账属于管理性覆盖，override 置 true。
type SettlementAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorAdminID  uint      `gorm:"index;not null" json:"operator_admin_id"`
	OperatorUsername string    `gorm:"type:varchar(100);index;not null;default:''" json:"operator_username"`
	WithdrawalID     uint      `gorm:"index;not null" json:"withdrawal_id"`
	WithdrawalNo     string    `gorm:"type:varchar(64);index;not null;default:''" json:"withdrawal_no"`
	Action           string    `gorm:"type:varchar(50);index;not null" json:"action"`
	FromStatus       string    `gorm:"type:varchar(20);not null;default:''" json:"from_status"`
	ToStatus         string    `gorm:"type:varchar(20);not null;default:''" json:"to_status"`
	Override         bool      `gorm:"not null;default:false;index" json:"override"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON       JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (SettlementAuditLog) TableName() string {
	return "settlement_audit_logs"
}
