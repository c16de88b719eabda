package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/settle-next/internal/authz"
	"github.com/settle-next/internal/cache"
	"github.com/settle-next/internal/config"
	adminhandlers "github.com/settle-next/internal/http/handlers/admin"
	publichandlers "github.com/settle-next/internal/http/handlers/public"
	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "st"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 转账结果回调（微信商家转账）
		apiV1.POST("/notify/transfer", publicHandler.TransferNotify)

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.POST("/logout", adminHandler.AdminLogout)
				authorized.GET("/profile", adminHandler.GetAdminProfile)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword) // 修改密码

				// 会员管理
				authorized.GET("/members", adminHandler.GetAdminMembers)
				authorized.GET("/members/:id", adminHandler.GetAdminMember)
				authorized.GET("/members/:id/transactions", adminHandler.GetAdminMemberTransactions)

				// 佣金管理
				authorized.GET("/commission/stats", adminHandler.GetCommissionStats)
				authorized.GET("/commission/calculations", adminHandler.GetAdminCommissions)
				authorized.POST("/commission/calculations", adminHandler.CreateCommission)
				authorized.GET("/commission/calculations/:id", adminHandler.GetAdminCommission)
				authorized.PUT("/commission/calculations/:id/confirm", adminHandler.ConfirmCommission)
				authorized.PUT("/commission/calculations/:id/cancel", adminHandler.CancelCommission)
				authorized.POST("/commission/order-accruals", adminHandler.CreateOrderAccrual)

				// 提现管理
				authorized.GET("/withdrawals", adminHandler.GetAdminWithdrawals)
				authorized.POST("/withdrawals", adminHandler.CreateWithdrawal)
				authorized.GET("/withdrawals/:id", adminHandler.GetAdminWithdrawal)
				authorized.PUT("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
				authorized.PUT("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)
				authorized.PUT("/withdrawals/:id/complete", adminHandler.CompleteWithdrawal)
				authorized.POST("/withdrawals/:id/cancel-transfer", adminHandler.CancelWithdrawalTransfer)
				authorized.GET("/withdrawal-audit-logs", adminHandler.GetWithdrawalAuditLogs)

				// 设置管理
				authorized.GET("/settings", adminHandler.GetSettings)
				authorized.PUT("/settings", adminHandler.UpdateSettings)
				authorized.GET("/settings/withdraw", adminHandler.GetWithdrawSettings)
				authorized.PUT("/settings/withdraw", adminHandler.UpdateWithdrawSettings)
				authorized.GET("/settings/commission", adminHandler.GetCommissionSettings)
				authorized.PUT("/settings/commission", adminHandler.UpdateCommissionSettings)
				authorized.GET("/settings/transfer-gateway", adminHandler.GetTransferGatewaySettings)
				authorized.PUT("/settings/transfer-gateway", adminHandler.UpdateTransferGatewaySettings)
				authorized.GET("/settings/captcha", adminHandler.GetCaptchaSettings)
				authorized.PUT("/settings/captcha", adminHandler.UpdateCaptchaSettings)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
