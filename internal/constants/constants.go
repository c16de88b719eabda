package constants

// 佣金类型常量
const (
	CommissionTypeDirect             = "direct"
	CommissionTypeIndirect           = "indirect"
	CommissionTypeDistributor        = "distributor"
	CommissionTypeNetworkDistributor = "network_distributor"
)

// 佣金结算状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusConfirmed = "confirmed"
	CommissionStatusCancelled = "cancelled"
)

// 提现状态常量
const (
	WithdrawStatusPending    = "pending"
	WithdrawStatusApproved   = "approved"
	WithdrawStatusRejected   = "rejected"
	WithdrawStatusProcessing = "processing"
	WithdrawStatusCompleted  = "completed"
	WithdrawStatusCancelled  = "cancelled"
)

// 提现收款账户类型常量
const (
	WithdrawAccountTypeBank   = "bank"
	WithdrawAccountTypeWechat = "wechat"
)

// 自动审核失败标记，写入 admin_remark 前缀，供列表与详情页强制人工处理
const (
	WithdrawAutoApproveFailedMark = "[auto-approve-failed] "
)

// 余额流水类型常量
const (
	BalanceTxnTypeCommissionCredit = "commission_credit"
	BalanceTxnTypeWithdrawFreeze   = "withdraw_freeze"
	BalanceTxnTypeWithdrawUnfreeze = "withdraw_unfreeze"
	BalanceTxnTypeWithdrawSettle   = "withdraw_settle"
	BalanceTxnTypeWithdrawRestore  = "withdraw_restore"
)

// 会员状态常量
const (
	MemberStatusActive   = "active"
	MemberStatusDisabled = "disabled"
)

// 转账网关常量
const (
	TransferProviderWechatpay = "wechatpay"
)

// 转账单网关状态常量
const (
	TransferBillStateAccepted        = "ACCEPTED"
	TransferBillStateProcessing      = "PROCESSING"
	TransferBillStateWaitUserConfirm = "WAIT_USER_CONFIRM"
	TransferBillStateTransfering     = "TRANSFERING"
	TransferBillStateSuccess         = "SUCCESS"
	TransferBillStateFail            = "FAIL"
	TransferBillStateCanceling       = "CANCELING"
	TransferBillStateCancelled       = "CANCELLED"
)

// 结算操作审计动作常量
const (
	SettlementActionApprove        = "approve"
	SettlementActionReject         = "reject"
	SettlementActionComplete       = "complete"
	SettlementActionCancelTransfer = "cancel_transfer"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
)

// 队列常量
const (
	QueueDefault         = "default"
	TaskTransferDispatch = "withdrawal:transfer_dispatch"
	TaskOrderCommission  = "commission:order_accrue"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "st"
)

// 设置键常量
const (
	SettingKeyWithdrawConfig        = "withdraw_setting"
	SettingKeyCommissionConfig      = "commission_setting"
	SettingKeyTransferGatewayConfig = "transfer_gateway"
	SettingKeyCaptchaConfig         = "captcha_config"
)

// 币种常量
const (
	SiteCurrencyDefault = "CNY"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}
