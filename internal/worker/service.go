package worker

import (
	"context"
	"errors"
	"time"

	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	commissionConfirmInterval = time.Minute
	transferPollInterval      = 30 * time.Second
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.CommissionService != nil {
		go s.runCommissionConfirmLoop(ctx)
	}
	if s.consumer != nil && s.consumer.WithdrawalService != nil {
		go s.runTransferPollLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runCommissionConfirmLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.CommissionService == nil {
		return
	}
	runOnce := func() {
		confirmed, err := s.consumer.CommissionService.ConfirmDueCalculations(time.Now())
		if err != nil {
			logger.Warnw("worker_commission_confirm_due_failed", "error", err)
			return
		}
		if confirmed > 0 {
			logger.Infow("worker_commission_confirm_due_done", "confirmed", confirmed)
		}
	}
	runOnce()

	ticker := time.NewTicker(commissionConfirmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runTransferPollLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.WithdrawalService == nil {
		return
	}
	runOnce := func() {
		if err := s.consumer.WithdrawalService.PollProcessingTransfers(ctx); err != nil {
			logger.Warnw("worker_transfer_poll_failed", "error", err)
		}
	}

	ticker := time.NewTicker(transferPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
