package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "operations",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/members", Action: "GET"},
				{Object: "/admin/members/:id", Action: "GET"},
				{Object: "/admin/members/:id/transactions", Action: "GET"},
				{Object: "/admin/commission/calculations", Action: "*"},
				{Object: "/admin/commission/calculations/:id", Action: "*"},
				{Object: "/admin/commission/calculations/:id/confirm", Action: "PUT"},
				{Object: "/admin/commission/calculations/:id/cancel", Action: "PUT"},
				{Object: "/admin/commission/order-accruals", Action: "POST"},
				{Object: "/admin/commission/stats", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/withdrawals", Action: "*"},
				{Object: "/admin/withdrawals/:id", Action: "*"},
				{Object: "/admin/withdrawals/:id/approve", Action: "PUT"},
				{Object: "/admin/withdrawals/:id/reject", Action: "PUT"},
				{Object: "/admin/withdrawals/:id/complete", Action: "PUT"},
				{Object: "/admin/withdrawals/:id/cancel-transfer", Action: "POST"},
				{Object: "/admin/withdrawal-audit-logs", Action: "GET"},
				{Object: "/admin/settings/withdraw", Action: "*"},
				{Object: "/admin/settings/commission", Action: "*"},
				{Object: "/admin/settings/transfer-gateway", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
