package scope

// Role is the closed set of caller roles. The query builder rejects any value
// outside this set rather than falling back to an unscoped predicate.
type Role string

const (
	// RolePlatformAdmin bypasses row visibility scoping entirely
	RolePlatformAdmin Role = "platform_admin"
	// RoleTenant sees its own tenant's rows plus those of direct child tenants
	RoleTenant Role = "tenant"
	// RoleCustomer sees a single named customer partition under its tenant
	RoleCustomer Role = "customer"
)

// ParseRole maps a stored role string onto the closed Role set
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePlatformAdmin, RoleTenant, RoleCustomer:
		return Role(s), true
	}
	return "", false
}

// AuthMethod records how an identity was resolved. Some endpoints (admin
// mutations) accept session-derived identities only.
type AuthMethod string

const (
	AuthMethodSession      AuthMethod = "session"
	AuthMethodServiceToken AuthMethod = "service_token"
)

// TenantWildcard is the session-local tenant value set for platform admins.
// The storage layer's row security reads it as "no restriction"; it is never
// used as a filter value by the query builder.
const TenantWildcard = "all"

// TenantIdentity is the resolved identity and role for one request lifetime.
// It is constructed once by the credential resolver and read-only thereafter;
// a new request always re-resolves.
type TenantIdentity struct {
	TenantID      string
	Role          Role
	CustomerScope string // non-empty exactly when Role == RoleCustomer
	AuthMethod    AuthMethod
	UserID        uint   // session-derived identities only
	Email         string // session-derived identities only
}

// IsAdmin reports whether the identity bypasses tenant scoping
func (id *TenantIdentity) IsAdmin() bool {
	return id.Role == RolePlatformAdmin
}

// EffectiveTenant returns the value injected into the database session for
// the storage-level row security layer: the wildcard for platform admins,
// the caller's tenant ID otherwise.
func (id *TenantIdentity) EffectiveTenant() string {
	if id.Role == RolePlatformAdmin {
		return TenantWildcard
	}
	return id.TenantID
}
