package authz

import "fmt"

// RoleSeed is a built-in role definition.
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds returns the shipped role matrix. Super admins bypass
// enforcement; these roles bound what regular operators can do.
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
			Role:     "catalog_manager",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/plans", Action: "*"},
				{Object: "/admin/plans/:id", Action: "*"},
				{Object: "/admin/coupons", Action: "*"},
				{Object: "/admin/coupons/:id", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "support",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/users/:id/status", Action: "PUT"},
				{Object: "/admin/orders/:id/cancel", Action: "POST"},
				{Object: "/admin/subscriptions/:id/cancel", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/withdrawals/:id/review", Action: "POST"},
				{Object: "/admin/commissions/:id/cancel", Action: "POST"},
				{Object: "/admin/orders/:id/mark-paid", Action: "POST"},
				{Object: "/admin/backups", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "dpo",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/lgpd/requests/:id/approve", Action: "POST"},
				{Object: "/admin/lgpd/requests/:id/reject", Action: "POST"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles seeds the built-in roles and their policies.
// Idempotent across restarts.
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
