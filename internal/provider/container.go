package provider

import (
	"github.com/settle-next/internal/authz"
	"github.com/settle-next/internal/cache"
	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/repository"
	"github.com/settle-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo              repository.AdminRepository
	MemberRepo             repository.MemberRepository
	CommissionRepo         repository.CommissionRepository
	WithdrawalRepo         repository.WithdrawalRepository
	SettlementAuditLogRepo repository.SettlementAuditLogRepository
	SettingRepo            repository.SettingRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	CaptchaService    *service.CaptchaService
	SettingService    *service.SettingService
	BalanceService    *service.BalanceService
	CommissionService *service.CommissionService
	WithdrawalService *service.WithdrawalService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.MemberRepo = repository.NewMemberRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.SettlementAuditLogRepo = repository.NewSettlementAuditLogRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	captchaSetting, err := c.SettingService.GetCaptchaSetting(c.Config.Captcha)
	if err != nil {
		logger.Warnw("provider_load_captcha_setting_failed", "error", err)
	} else {
		c.Config.Captcha = service.CaptchaSettingToConfig(captchaSetting)
	}

	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.BalanceService = service.NewBalanceService(c.MemberRepo)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.MemberRepo, c.BalanceService, c.SettingService)
	c.WithdrawalService = service.NewWithdrawalService(
		c.WithdrawalRepo,
		c.MemberRepo,
		c.SettlementAuditLogRepo,
		c.BalanceService,
		c.SettingService,
		c.QueueClient,
	)
}
