package queue

import (
	"encoding/json"

	"github.com/settle-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskTransferDispatch 提现转账发起任务
	TaskTransferDispatch = constants.TaskTransferDispatch
	// TaskOrderCommission 订单佣金计算任务
	TaskOrderCommission = constants.TaskOrderCommission
)

// TransferDispatchPayload 提现转账发起任务载荷
type TransferDispatchPayload struct {
	WithdrawalID uint `json:"withdrawal_id"`
}

// OrderCommissionRecipient 分润受益人载荷
type OrderCommissionRecipient struct {
	MemberID       uint   `json:"member_id"`
	CommissionType string `json:"commission_type"`
}

// OrderCommissionPayload 订单佣金计算任务载荷
type OrderCommissionPayload struct {
	OrderID       uint                       `json:"order_id"`
	PayerMemberID uint                       `json:"payer_member_id"`
	OrderAmount   string                     `json:"order_amount"`
	Recipients    []OrderCommissionRecipient `json:"recipients"`
}

// NewTransferDispatchTask 创建提现转账发起任务
func NewTransferDispatchTask(payload TransferDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTransferDispatch, body), nil
}

// NewOrderCommissionTask 创建订单佣金计算任务
func NewOrderCommissionTask(payload OrderCommissionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCommission, body), nil
}
