package transfer

import (
	"context"
	"errors"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("transfer gateway config invalid")
	ErrRequestFailed   = errors.New("transfer gateway request failed")
	ErrResponseInvalid = errors.New("transfer gateway response invalid")
	ErrNotCancellable  = errors.New("transfer bill not cancellable")
)

// InitiateInput 发起转账输入
type InitiateInput struct {
	OutBillNo string
	OpenID    string
	Amount    string
	Remark    string
	NotifyURL string
}

// InitiateResult 发起转账返回
type InitiateResult struct {
	BillNo    string
	State     string
	CreatedAt *time.Time
	Raw       map[string]interface{}
}

// CancelResult 撤销转账返回
type CancelResult struct {
	BillNo    string
	State     string
	UpdatedAt *time.Time
	Raw       map[string]interface{}
}

// QueryResult 查询转账单返回
type QueryResult struct {
	OutBillNo  string
	BillNo     string
	State      string
	FailReason string
	UpdatedAt  *time.Time
	Raw        map[string]interface{}
}

// WebhookResult 转账结果回调验签解密后返回
type WebhookResult struct {
	EventType  string
	OutBillNo  string
	BillNo     string
	State      string
	FailReason string
	UpdatedAt  *time.Time
	Raw        map[string]interface{}
}

// Gateway 商家转账网关
// 发起、撤销、查询都以商户单号（提现单号）定位转账单。
// 撤销在网关判定不可撤销时返回 ErrNotCancellable，调用方据此保持原状态。
type Gateway interface {
	Name() string
	InitiateTransfer(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	CancelTransfer(ctx context.Context, outBillNo string) (*CancelResult, error)
	QueryTransfer(ctx context.Context, outBillNo string) (*QueryResult, error)
	VerifyAndDecodeWebhook(ctx context.Context, headers map[string]string, body []byte) (*WebhookResult, error)
}
