package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/provider"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/service"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskTransferDispatch, c.handleTransferDispatch)
	mux.HandleFunc(queue.TaskOrderCommission, c.handleOrderCommission)
}

func (c *Consumer) handleTransferDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_transfer_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TransferDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_transfer_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.WithdrawalID == 0 {
		logger.Debugw("worker_transfer_dispatch_skip_invalid_payload", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	if c.WithdrawalService == nil {
		logger.Warnw("worker_transfer_dispatch_skip_service_nil", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	if err := c.WithdrawalService.InitiateApprovedTransfer(ctx, payload.WithdrawalID); err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawNotFound):
			logger.Debugw("worker_transfer_dispatch_skip_not_found", "withdrawal_id", payload.WithdrawalID)
			return nil
		case errors.Is(err, service.ErrWithdrawStatusInvalid):
			logger.Debugw("worker_transfer_dispatch_skip_status", "withdrawal_id", payload.WithdrawalID)
			return nil
		case errors.Is(err, service.ErrWithdrawAccountInvalid):
			logger.Debugw("worker_transfer_dispatch_skip_account", "withdrawal_id", payload.WithdrawalID)
			return nil
		case errors.Is(err, service.ErrTransferGatewayDisabled):
			logger.Warnw("worker_transfer_dispatch_gateway_disabled", "withdrawal_id", payload.WithdrawalID)
			return nil
		default:
			logger.Warnw("worker_transfer_dispatch_failed", "withdrawal_id", payload.WithdrawalID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleOrderCommission(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_commission_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderCommissionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_commission_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || len(payload.Recipients) == 0 {
		logger.Debugw("worker_order_commission_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.CommissionService == nil {
		logger.Warnw("worker_order_commission_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}

	orderAmount, err := decimal.NewFromString(payload.OrderAmount)
	if err != nil {
		logger.Warnw("worker_order_commission_amount_invalid", "order_id", payload.OrderID, "order_amount", payload.OrderAmount)
		return nil
	}
	recipients := make([]service.CommissionRecipient, 0, len(payload.Recipients))
	for _, item := range payload.Recipients {
		recipients = append(recipients, service.CommissionRecipient{
			MemberID:       item.MemberID,
			CommissionType: item.CommissionType,
		})
	}

	if err := c.CommissionService.CreateOrderCalculations(
		payload.OrderID,
		payload.PayerMemberID,
		models.NewMoneyFromDecimal(orderAmount),
		recipients,
	); err != nil {
		logger.Warnw("worker_order_commission_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
