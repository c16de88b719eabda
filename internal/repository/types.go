package repository

import "time"

// MemberListFilter 查询会员列表的过滤条件
type MemberListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// CommissionListFilter 查询佣金结算记录的过滤条件
type CommissionListFilter struct {
	Page              int
	PageSize          int
	RecipientMemberID uint
	OrderID           uint
	CommissionType    string
	Status            string
	Keyword           string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
}

// CommissionTransactionListFilter 查询佣金余额流水的过滤条件
type CommissionTransactionListFilter struct {
	Page        int
	PageSize    int
	MemberID    uint
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WithdrawalListFilter 查询提现申请列表的过滤条件
type WithdrawalListFilter struct {
	Page        int
	PageSize    int
	MemberID    uint
	Status      string
	AccountType string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// SettlementAuditLogListFilter 查询结算审计日志的过滤条件
type SettlementAuditLogListFilter struct {
	Page            int
	PageSize        int
	WithdrawalID    uint
	OperatorAdminID uint
	Action          string
	OverrideOnly    bool
}
