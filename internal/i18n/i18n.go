package i18n

import (
	"fmt"
	"strings"

	"github.com/settle-next/internal/constants"

	"github.com/gin-gonic/gin"
)

// ResolveLocale 解析请求语言，优先级：query > header > 默认
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return constants.LocaleZhCN
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	if locale := normalizeLocale(c.GetHeader("Accept-Language")); locale != "" {
		return locale
	}
	return constants.LocaleZhCN
}

// T 按语言返回文案，缺失时回退默认语言，再缺失时返回 key 本身
func T(locale, key string) string {
	if messages, ok := catalog[normalizeLocale(locale)]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[constants.LocaleZhCN][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按语言格式化文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func normalizeLocale(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexAny(trimmed, ",;"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	lowered := strings.ToLower(strings.TrimSpace(trimmed))
	switch {
	case strings.HasPrefix(lowered, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(lowered, "en"):
		return constants.LocaleEnUS
	}
	return ""
}

var catalog = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request": "请求参数错误",
		"error.unauthorized": "未登录或登录已过期",
		"error.forbidden": "没有操作权限",
		"error.not_found": "资源不存在",
		"error.internal": "服务器内部错误",
		"error.rate_limited": "请求过于频繁，请稍后再试",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.login_too_many": "登录尝试过于频繁，请 %d 秒后再试",
		"error.invalid_credentials": "账号或密码错误",
		"error.jwt_secret_missing": "服务端鉴权配置缺失",
		"error.auth_header_missing": "缺少鉴权头",
		"error.auth_header_invalid": "鉴权头格式错误",
		"error.token_invalid": "登录凭证无效",
		"error.token_revoked": "登录凭证已失效，请重新登录",
		"error.captcha_required": "请完成验证码校验",
		"error.captcha_invalid": "验证码错误",
		"error.captcha_unavailable": "验证码服务不可用",
		"error.captcha_generate_failed": "验证码生成失败",
		"error.captcha_config_invalid": "验证码配置不合法",
		"error.password_old_invalid": "原密码错误",
		"error.password_weak": "密码强度不足",
		"error.password_min_length": "密码长度至少 %d 位",
		"error.password_require_upper": "密码需包含大写字母",
		"error.password_require_lower": "密码需包含小写字母",
		"error.password_require_number": "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.admin_id_invalid": "管理员 ID 不合法",
		"error.admin_id_type_invalid": "管理员 ID 类型错误",
		"error.admin_username_invalid": "管理员用户名不合法",
		"error.admin_username_exists": "管理员用户名已存在",
		"error.admin_create_failed": "创建管理员失败",
		"error.admin_update_failed": "更新管理员失败",
		"error.admin_delete_failed": "删除管理员失败",
		"error.admin_delete_self_forbidden": "不能删除当前登录的管理员",
		"error.admin_delete_protected": "不能删除受保护的超级管理员",
		"error.admin_delete_last_forbidden": "不能删除最后一个管理员",
		"error.member_not_found": "会员不存在",
		"error.member_disabled": "会员已被禁用",
		"error.commission_not_found": "佣金记录不存在",
		"error.commission_invalid": "佣金参数不合法",
		"error.commission_status_invalid": "佣金状态不允许该操作",
		"error.balance_insufficient": "可用佣金余额不足",
		"error.withdraw_not_found": "提现申请不存在",
		"error.withdraw_amount_invalid": "提现金额不合法",
		"error.withdraw_account_invalid": "收款账户信息不合法",
		"error.withdraw_status_invalid": "提现状态不允许该操作",
		"error.withdraw_not_cancellable": "该转账不可撤销",
		"error.withdraw_config_invalid": "提现配置不合法",
		"error.commission_config_invalid": "佣金配置不合法",
		"error.transfer_gateway_disabled": "转账网关未启用",
		"error.transfer_gateway_failed": "转账网关请求失败",
		"error.transfer_notify_invalid": "转账回调验签失败",
		"error.setting_update_failed": "配置保存失败",
		"error.list_failed": "查询列表失败",
		"error.detail_failed": "查询详情失败",
		"error.operation_failed": "操作失败",
	},
	constants.LocaleEnUS: {
		"error.bad_request": "invalid request parameters",
		"error.unauthorized": "unauthorized or session expired",
		"error.forbidden": "permission denied",
		"error.not_found": "resource not found",
		"error.internal": "internal server error",
		"error.rate_limited": "too many requests, try again later",
		"error.rate_limit_unavailable": "rate limiter unavailable",
		"error.login_too_many": "too many login attempts, try again in %d seconds",
		"error.invalid_credentials": "invalid username or password",
		"error.jwt_secret_missing": "server auth configuration missing",
		"error.auth_header_missing": "authorization header missing",
		"error.auth_header_invalid": "authorization header malformed",
		"error.token_invalid": "invalid token",
		"error.token_revoked": "token revoked, please sign in again",
		"error.captcha_required": "captcha verification required",
		"error.captcha_invalid": "captcha verification failed",
		"error.captcha_unavailable": "captcha service unavailable",
		"error.captcha_generate_failed": "failed to generate captcha",
		"error.captcha_config_invalid": "invalid captcha configuration",
		"error.password_old_invalid": "old password is incorrect",
		"error.password_weak": "password is too weak",
		"error.password_min_length": "password must be at least %d characters",
		"error.password_require_upper": "password must contain an uppercase letter",
		"error.password_require_lower": "password must contain a lowercase letter",
		"error.password_require_number": "password must contain a digit",
		"error.password_require_special": "password must contain a special character",
		"error.admin_id_invalid": "invalid admin id",
		"error.admin_id_type_invalid": "invalid admin id type",
		"error.admin_username_invalid": "invalid admin username",
		"error.admin_username_exists": "admin username already exists",
		"error.admin_create_failed": "failed to create admin",
		"error.admin_update_failed": "failed to update admin",
		"error.admin_delete_failed": "failed to delete admin",
		"error.admin_delete_self_forbidden": "cannot delete the signed-in admin",
		"error.admin_delete_protected": "cannot delete the protected super admin",
		"error.admin_delete_last_forbidden": "cannot delete the last admin",
		"error.member_not_found": "member not found",
		"error.member_disabled": "member is disabled",
		"error.commission_not_found": "commission record not found",
		"error.commission_invalid": "invalid commission input",
		"error.commission_status_invalid": "commission status does not allow this operation",
		"error.balance_insufficient": "insufficient available commission balance",
		"error.withdraw_not_found": "withdrawal request not found",
		"error.withdraw_amount_invalid": "invalid withdrawal amount",
		"error.withdraw_account_invalid": "invalid payout account",
		"error.withdraw_status_invalid": "withdrawal status does not allow this operation",
		"error.withdraw_not_cancellable": "transfer is no longer cancellable",
		"error.withdraw_config_invalid": "invalid withdrawal configuration",
		"error.commission_config_invalid": "invalid commission configuration",
		"error.transfer_gateway_disabled": "transfer gateway is disabled",
		"error.transfer_gateway_failed": "transfer gateway request failed",
		"error.transfer_notify_invalid": "transfer notification verification failed",
		"error.setting_update_failed": "failed to save configuration",
		"error.list_failed": "failed to query list",
		"error.detail_failed": "failed to query detail",
		"error.operation_failed": "operation failed",
	},
}
