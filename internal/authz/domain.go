package authz

import (
	"strings"
	"time"
)

// Permission is an atomic capability tag gating one class of operation.
type Permission string

// Read permissions.
const (
	PermReadTasks     Permission = "read_tasks"
	PermReadClients   Permission = "read_clients"
	PermReadProjects  Permission = "read_projects"
	PermReadUsers     Permission = "read_users"
	PermReadAnalytics Permission = "read_analytics"
	PermReadComments  Permission = "read_comments"
)

// Task write permissions.
const (
	PermCreateTasks Permission = "create_tasks"
	PermUpdateTasks Permission = "update_tasks"
	PermDeleteTasks Permission = "delete_tasks"
	PermAssignTasks Permission = "assign_tasks"
)

// Client management permissions.
const (
	PermCreateClients Permission = "create_clients"
	PermUpdateClients Permission = "update_clients"
	PermDeleteClients Permission = "delete_clients"
)

// Project management permissions.
const (
	PermCreateProjects       Permission = "create_projects"
	PermUpdateProjects       Permission = "update_projects"
	PermDeleteProjects       Permission = "delete_projects"
	PermManageProjectMembers Permission = "manage_project_members"
)

// Comment permissions.
const (
	PermCreateComments   Permission = "create_comments"
	PermUpdateComments   Permission = "update_comments"
	PermDeleteComments   Permission = "delete_comments"
	PermModerateComments Permission = "moderate_comments"
)

// Administrative permissions.
const (
	PermManageUsers        Permission = "manage_users"
	PermManageRoles        Permission = "manage_roles"
	PermViewSystemLogs     Permission = "view_system_logs"
	PermManageSystemConfig Permission = "manage_system_config"
)

// Advanced feature permissions.
const (
	PermUseAIFeatures   Permission = "use_ai_features"
	PermAccessAnalytics Permission = "access_analytics"
	PermExportData      Permission = "export_data"
	PermImportData      Permission = "import_data"
)

// Special elevated permissions.
const (
	PermImpersonateUser Permission = "impersonate_user"
	PermBypassRateLimit Permission = "bypass_rate_limits"
	PermAccessDebugInfo Permission = "access_debug_info"
)

// AllPermissions returns the full closed set of permissions.
func AllPermissions() []Permission {
	return []Permission{
		PermReadTasks, PermReadClients, PermReadProjects, PermReadUsers,
		PermReadAnalytics, PermReadComments,
		PermCreateTasks, PermUpdateTasks, PermDeleteTasks, PermAssignTasks,
		PermCreateClients, PermUpdateClients, PermDeleteClients,
		PermCreateProjects, PermUpdateProjects, PermDeleteProjects, PermManageProjectMembers,
		PermCreateComments, PermUpdateComments, PermDeleteComments, PermModerateComments,
		PermManageUsers, PermManageRoles, PermViewSystemLogs, PermManageSystemConfig,
		PermUseAIFeatures, PermAccessAnalytics, PermExportData, PermImportData,
		PermImpersonateUser, PermBypassRateLimit, PermAccessDebugInfo,
	}
}

// Role is a named permission bundle assignable to a user.
type Role string

// Roles known to the system.
const (
	RoleGuest  Role = "guest"
	RoleUser   Role = "user"
	RoleMember Role = "member"

	RoleDeveloper Role = "developer"
	RoleDesigner  Role = "designer"
	RoleQATester  Role = "qa_tester"

	RoleProjectManager Role = "project_manager"
	RoleTeamLead       Role = "team_lead"
	RoleAccountManager Role = "account_manager"

	RoleAdmin       Role = "admin"
	RoleSuperAdmin  Role = "super_admin"
	RoleSystemAdmin Role = "system_admin"
)

// DefaultRole is assigned when a user carries no recognized role.
const DefaultRole = RoleUser

// AllRoles returns the full closed set of roles.
func AllRoles() []Role {
	return []Role{
		RoleGuest, RoleUser, RoleMember,
		RoleDeveloper, RoleDesigner, RoleQATester,
		RoleProjectManager, RoleTeamLead, RoleAccountManager,
		RoleAdmin, RoleSuperAdmin, RoleSystemAdmin,
	}
}

// ParseRole decodes a raw role string case-insensitively. The boolean reports
// whether the string named a known role.
func ParseRole(raw string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, role := range AllRoles() {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

// PermissionSet is a set of permissions keyed by tag.
type PermissionSet map[Permission]struct{}

// Contains reports set membership.
func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Add inserts a permission into the set.
func (s PermissionSet) Add(p Permission) {
	s[p] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// UserPermissions is the per-user snapshot of roles and directly granted
// permissions. Records live in the Manager cache and are mutated in place by
// temporary grant and revoke operations.
type UserPermissions struct {
	UserID      string
	Email       string
	Roles       []Role
	Permissions PermissionSet
	GrantedAt   time.Time
	ExpiresAt   *time.Time
	GrantedBy   string
	Context     map[string]any
}

// Clone returns a deep copy of the record. Useful for handing snapshots to
// callers outside the Manager lock.
func (u *UserPermissions) Clone() *UserPermissions {
	if u == nil {
		return nil
	}
	out := &UserPermissions{
		UserID:      u.UserID,
		Email:       u.Email,
		Roles:       append([]Role(nil), u.Roles...),
		Permissions: u.Permissions.Clone(),
		GrantedAt:   u.GrantedAt,
		GrantedBy:   u.GrantedBy,
	}
	if u.ExpiresAt != nil {
		expires := *u.ExpiresAt
		out.ExpiresAt = &expires
	}
	if u.Context != nil {
		out.Context = make(map[string]any, len(u.Context))
		for k, v := range u.Context {
			out.Context[k] = v
		}
	}
	return out
}
