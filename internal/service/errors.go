package service

import "errors"

// 通用错误
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
)

// 验证码错误
var (
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaVerifyFailed  = errors.New("captcha verify failed")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// 会员与余额错误
var (
	ErrMemberNotFound                 = errors.New("member not found")
	ErrMemberDisabled                 = errors.New("member disabled")
	ErrBalanceInvalidAmount           = errors.New("balance amount invalid")
	ErrBalanceInsufficient            = errors.New("balance insufficient")
	ErrBalanceUpdateFailed            = errors.New("balance update failed")
	ErrBalanceTransactionCreateFailed = errors.New("balance transaction create failed")
)

// 佣金结算错误
var (
	ErrCommissionNotFound      = errors.New("commission calculation not found")
	ErrCommissionInvalid       = errors.New("commission input invalid")
	ErrCommissionExists        = errors.New("commission calculation exists")
	ErrCommissionStatusInvalid = errors.New("commission status invalid")
	ErrCommissionConfigInvalid = errors.New("commission config invalid")
)

// 提现错误
var (
	ErrWithdrawNotFound       = errors.New("withdrawal request not found")
	ErrWithdrawAmountInvalid  = errors.New("withdrawal amount invalid")
	ErrWithdrawAccountInvalid = errors.New("withdrawal account invalid")
	ErrWithdrawStatusInvalid  = errors.New("withdrawal status invalid")
	ErrWithdrawNotCancellable = errors.New("withdrawal transfer not cancellable")
	ErrWithdrawConfigInvalid  = errors.New("withdrawal config invalid")
)

// 转账网关错误
var (
	ErrTransferGatewayDisabled      = errors.New("transfer gateway disabled")
	ErrTransferGatewayConfigInvalid = errors.New("transfer gateway config invalid")
)
