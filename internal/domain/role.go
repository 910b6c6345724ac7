package domain

// Role enumerates caller roles recognized by the permit engine.
type Role string

const (
	RoleTenantUser  Role = "TENANT_USER"
	RoleMallManager Role = "MALL_MANAGER"
	RoleInspector   Role = "INSPECTOR"
	RoleAdmin       Role = "ADMIN"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleTenantUser, RoleMallManager, RoleInspector, RoleAdmin:
		return true
	}
	return false
}
