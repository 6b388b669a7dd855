package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	adminSubjectFmt = "admin:%d"
	rolePrefix      = "role:"
	roleAnchor      = "role:__anchor__"
)

const defaultRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy is one authorization rule.
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service wraps the Casbin enforcer: policy loading, authorization
// checks and role management.
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService creates the authorization service.
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(defaultRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

// Enforcer exposes the underlying enforcer for policy management.
func (s *Service) Enforcer() *casbin.SyncedEnforcer {
	if s == nil {
		return nil
	}
	return s.enforcer
}

// Enforce runs one authorization check.
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service unavailable")
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceAdmin checks authorization for an admin id.
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForAdmin(adminID), obj, act)
}

// ReloadPolicy reloads policies from storage.
func (s *Service) ReloadPolicy() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	return s.enforcer.LoadPolicy()
}

// EnsureRole creates the role when missing.
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if s == nil || s.enforcer == nil {
		return "", fmt.Errorf("authz service unavailable")
	}
	if normalized == roleAnchor {
		return "", fmt.Errorf("reserved role is not allowed")
	}

	exists, err := s.enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("check role failed: %w", err)
	}
	if exists {
		return normalized, nil
	}

	added, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("create role failed: %w", err)
	}
	if added {
		if err := s.saveAndReload(); err != nil {
			return "", err
		}
	}
	return normalized, nil
}

// ListRoles lists known roles.
func (s *Service) ListRoles() ([]string, error) {
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roleSet := make(map[string]struct{})
	for _, rule := range rules {
		if len(rule) >= 1 {
			if strings.HasPrefix(rule[0], rolePrefix) && rule[0] != roleAnchor {
				roleSet[rule[0]] = struct{}{}
			}
		}
		if len(rule) >= 2 {
			if strings.HasPrefix(rule[1], rolePrefix) && rule[1] != roleAnchor {
				roleSet[rule[1]] = struct{}{}
			}
		}
	}
	roles := make([]string, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}

// DeleteRole removes a role and its policies.
func (s *Service) DeleteRole(role string) error {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if normalized == roleAnchor {
		return fmt.Errorf("reserved role is not allowed")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	if removed, err := s.enforcer.RemoveFilteredPolicy(0, normalized); err != nil {
		return fmt.Errorf("remove role policy failed: %w", err)
	} else if removed {
		changed = true
	}
	if removed, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, normalized); err != nil {
		return fmt.Errorf("remove role link failed: %w", err)
	} else if removed {
		changed = true
	}
	if removed, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 1, normalized); err != nil {
		return fmt.Errorf("remove role incoming link failed: %w", err)
	} else if removed {
		changed = true
	}

	if changed {
		if err := s.saveAndReload(); err != nil {
			return err
		}
	}
	return nil
}

// GrantRolePolicy grants one policy to a role.
func (s *Service) GrantRolePolicy(role, object, action string) error {
	normalizedRole, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	normalizedObject := NormalizeObject(object)
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("action is required")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	added, err := s.enforcer.AddPolicy(normalizedRole, normalizedObject, normalizedAction)
	if err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	if added {
		if err := s.saveAndReload(); err != nil {
			return err
		}
	}
	return nil
}

// RevokeRolePolicy revokes one policy from a role.
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	normalizedObject := NormalizeObject(object)
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("action is required")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	removed, err := s.enforcer.RemovePolicy(normalizedRole, normalizedObject, normalizedAction)
	if err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	if removed {
		if err := s.saveAndReload(); err != nil {
			return err
		}
	}
	return nil
}

// GetRolePolicies lists a role's policies.
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}

	rules, err := s.enforcer.GetFilteredPolicy(0, normalizedRole)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	return convertPolicies(rules), nil
}

// SetAdminRoles replaces the admin's role set.
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return fmt.Errorf("admin id is required")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	subject := SubjectForAdmin(adminID)

	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear admin roles failed: %w", err)
	}

	for _, role := range roles {
		normalizedRole, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, normalizedRole); err != nil {
			return fmt.Errorf("assign admin role failed: %w", err)
		}
	}

	return s.saveAndReload()
}

// GetAdminRoles lists the admin's roles.
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, fmt.Errorf("admin id is required")
	}
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles failed: %w", err)
	}
	filtered := make([]string, 0, len(roles))
	for _, role := range roles {
		if !strings.HasPrefix(role, rolePrefix) || role == roleAnchor {
			continue
		}
		filtered = append(filtered, role)
	}
	sort.Strings(filtered)
	return filtered, nil
}

// GetAdminPolicies lists the admin's effective policies, role-derived
// and direct.
func (s *Service) GetAdminPolicies(adminID uint) ([]Policy, error) {
	if adminID == 0 {
		return nil, fmt.Errorf("admin id is required")
	}
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	subject := SubjectForAdmin(adminID)
	policyMap := map[string]Policy{}

	appendRules := func(rules [][]string) {
		for _, item := range convertPolicies(rules) {
			key := item.Subject + "|" + item.Object + "|" + item.Action
			policyMap[key] = item
		}
	}

	directRules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("get direct policies failed: %w", err)
	}
	appendRules(directRules)

	roles, err := s.GetAdminRoles(adminID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		rules, err := s.enforcer.GetFilteredPolicy(0, role)
		if err != nil {
			return nil, fmt.Errorf("get role policies failed: %w", err)
		}
		appendRules(rules)
	}

	result := make([]Policy, 0, len(policyMap))
	for _, item := range policyMap {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Subject == result[j].Subject {
			if result[i].Object == result[j].Object {
				return result[i].Action < result[j].Action
			}
			return result[i].Object < result[j].Object
		}
		return result[i].Subject < result[j].Subject
	})
	return result, nil
}

func (s *Service) saveAndReload() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	return nil
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

// SubjectForAdmin builds the casbin subject for an admin.
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf(adminSubjectFmt, adminID)
}

// NormalizeRole normalizes a role name.
func NormalizeRole(role string) (string, error) {
	normalized := strings.TrimSpace(role)
	if normalized == "" {
		return "", fmt.Errorf("role is required")
	}
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", fmt.Errorf("role is required")
	}
	return normalized, nil
}

// NormalizeObject normalizes a resource path.
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return normalized
}

// NormalizeAction normalizes an action verb.
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
