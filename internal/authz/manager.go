package authz

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTemporaryGrantTTL applies when a temporary grant is requested
// without an explicit duration.
const DefaultTemporaryGrantTTL = time.Hour

// Manager owns the role matrix and the in-memory cache of user permission
// records. All cache access goes through the Manager so concurrent callers
// observe last-writer-wins ordering per user.
type Manager struct {
	logger *slog.Logger

	mu     sync.RWMutex
	cache  map[string]*UserPermissions
	matrix map[Role]PermissionSet

	// extendTempExpiry switches AddTemporaryPermission from overwriting the
	// record expiry to extending it to the later of the two timestamps.
	extendTempExpiry bool
	now              func() time.Time
}

// Option customizes Manager construction.
type Option func(*Manager)

// WithClock injects a time source. Tests use this to exercise expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithExtendedTemporaryExpiry makes temporary grants extend an existing
// record expiry instead of overwriting it. The default preserves the
// historical overwrite behaviour.
func WithExtendedTemporaryExpiry() Option {
	return func(m *Manager) {
		m.extendTempExpiry = true
	}
}

// NewManager constructs a Manager with the fixed role matrix.
func NewManager(logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger: logger,
		cache:  make(map[string]*UserPermissions),
		matrix: newRoleMatrix(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PermissionsForRole returns the permission set for a role. Unknown roles
// yield an empty set rather than an error.
func (m *Manager) PermissionsForRole(role Role) PermissionSet {
	set, ok := m.matrix[role]
	if !ok {
		return PermissionSet{}
	}
	return set.Clone()
}

// PermissionsForRoles returns the union of the permission sets of all given
// roles.
func (m *Manager) PermissionsForRoles(roles []Role) PermissionSet {
	union := PermissionSet{}
	for _, role := range roles {
		for p := range m.matrix[role] {
			union[p] = struct{}{}
		}
	}
	return union
}

// HasPermission reports whether the record grants the permission, either
// directly or through a role. An expired record grants nothing; the expiry
// check runs before any permission lookup.
func (m *Manager) HasPermission(record *UserPermissions, permission Permission) bool {
	if record == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasPermissionLocked(record, permission)
}

func (m *Manager) hasPermissionLocked(record *UserPermissions, permission Permission) bool {
	if record.ExpiresAt != nil && record.ExpiresAt.Before(m.now()) {
		m.logger.Warn("permission record expired", slog.String("user_id", record.UserID))
		return false
	}
	if record.Permissions.Contains(permission) {
		return true
	}
	for _, role := range record.Roles {
		if m.matrix[role].Contains(permission) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the record grants at least one of the
// given permissions. An empty list is never satisfied.
func (m *Manager) HasAnyPermission(record *UserPermissions, permissions []Permission) bool {
	if record == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range permissions {
		if m.hasPermissionLocked(record, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the record grants every given
// permission. An empty list is vacuously satisfied.
func (m *Manager) HasAllPermissions(record *UserPermissions, permissions []Permission) bool {
	if record == nil {
		return len(permissions) == 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range permissions {
		if !m.hasPermissionLocked(record, p) {
			return false
		}
	}
	return true
}

// ResolveUserPermissions builds the permission record for a user from the
// role strings supplied by the identity layer, caches it and returns it.
// Unrecognized role strings are dropped with a warning; a user without any
// surviving role falls back to the default role.
func (m *Manager) ResolveUserPermissions(userID, email string, roleNames []string) *UserPermissions {
	var roles []Role
	seen := make(map[Role]struct{}, len(roleNames))
	for _, raw := range roleNames {
		role, ok := ParseRole(raw)
		if !ok {
			m.logger.Warn("unknown role", slog.String("role", raw), slog.String("user_id", userID))
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		roles = []Role{DefaultRole}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record := &UserPermissions{
		UserID:      userID,
		Email:       email,
		Roles:       roles,
		Permissions: m.PermissionsForRoles(roles),
		GrantedAt:   m.now(),
	}
	m.cache[userID] = record
	return record
}

// CachedUserPermissions returns the cached record for a user without side
// effects. It performs no expiry check; callers use HasPermission for
// expiry-aware decisions.
func (m *Manager) CachedUserPermissions(userID string) (*UserPermissions, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.cache[userID]
	return record, ok
}

// ClearCache removes the record for the given user, or every record when
// userID is empty.
func (m *Manager) ClearCache(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if userID == "" {
		m.cache = make(map[string]*UserPermissions)
		return
	}
	delete(m.cache, userID)
}

// AddTemporaryPermission grants a permission to a cached user for the given
// duration. The call is a no-op when the user has no cached record. By
// default the record expiry is overwritten with now+duration even when a
// later expiry was already set; WithExtendedTemporaryExpiry keeps the later
// of the two.
func (m *Manager) AddTemporaryPermission(userID string, permission Permission, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultTemporaryGrantTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.cache[userID]
	if !ok {
		return
	}
	record.Permissions.Add(permission)
	expires := m.now().Add(duration)
	if m.extendTempExpiry && record.ExpiresAt != nil && record.ExpiresAt.After(expires) {
		return
	}
	record.ExpiresAt = &expires
	m.logger.Info("temporary permission granted",
		slog.String("user_id", userID),
		slog.String("permission", string(permission)),
		slog.Duration("ttl", duration))
}

// RemovePermission revokes a directly granted permission from a cached user.
// Role-derived permissions are untouched, so a removed permission may remain
// reachable through a role.
func (m *Manager) RemovePermission(userID string, permission Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.cache[userID]
	if !ok || !record.Permissions.Contains(permission) {
		return
	}
	delete(record.Permissions, permission)
	m.logger.Info("permission removed",
		slog.String("user_id", userID),
		slog.String("permission", string(permission)))
}

// RoleHierarchy returns a copy of the fixed role level table.
func (m *Manager) RoleHierarchy() map[Role]int {
	out := make(map[Role]int, len(roleHierarchy))
	for role, level := range roleHierarchy {
		out[role] = level
	}
	return out
}

// CanAssignRole reports whether an actor holding assignerRoles may assign
// targetRole. The highest level among the actor's roles must reach the
// target role's level; an actor without roles compares against level zero.
func (m *Manager) CanAssignRole(assignerRoles []Role, targetRole Role) bool {
	maxLevel := 0
	for _, role := range assignerRoles {
		if level := roleHierarchy[role]; level > maxLevel {
			maxLevel = level
		}
	}
	return maxLevel >= roleHierarchy[targetRole]
}

// AuthorizeTool decides whether the record may invoke the named tool. Tools
// without an entry in the permission table are allowed unconditionally; this
// fail-open default is deliberate.
func (m *Manager) AuthorizeTool(record *UserPermissions, toolName string) bool {
	required, ok := toolPermissions[toolName]
	if !ok || len(required) == 0 {
		return true
	}
	return m.HasAnyPermission(record, required)
}

// RequiredToolPermissions exposes the permission requirements for a tool.
// The boolean reports whether the tool is registered at all.
func (m *Manager) RequiredToolPermissions(toolName string) ([]Permission, bool) {
	required, ok := toolPermissions[toolName]
	if !ok {
		return nil, false
	}
	return append([]Permission(nil), required...), true
}
