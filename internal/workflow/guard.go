package workflow

import "github.com/spec-kit/permit-service/internal/domain"

// Operation names an engine operation subject to role gating.
type Operation string

const (
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpApprove       Operation = "approve"
	OpReject        Operation = "reject"
	OpActivate      Operation = "activate"
	OpComplete      Operation = "complete"
	OpCancel        Operation = "cancel"
	OpAddInspection Operation = "add_inspection"
	OpAddIncident   Operation = "add_incident"
	OpDelete        Operation = "delete"
)

// allowedRoles is the single source of truth for operation authorization.
// The engine consults it before any mutation; per-route role lists do not
// exist anywhere else.
var allowedRoles = map[Operation][]domain.Role{
	OpCreate:        {domain.RoleTenantUser, domain.RoleMallManager, domain.RoleAdmin},
	OpUpdate:        {domain.RoleTenantUser, domain.RoleMallManager, domain.RoleAdmin},
	OpApprove:       {domain.RoleMallManager, domain.RoleAdmin},
	OpReject:        {domain.RoleMallManager, domain.RoleAdmin},
	OpActivate:      {domain.RoleMallManager, domain.RoleAdmin},
	OpComplete:      {domain.RoleTenantUser, domain.RoleMallManager, domain.RoleAdmin},
	OpCancel:        {domain.RoleTenantUser, domain.RoleMallManager, domain.RoleAdmin},
	OpAddInspection: {domain.RoleInspector, domain.RoleMallManager, domain.RoleAdmin},
	OpAddIncident:   {domain.RoleTenantUser, domain.RoleInspector, domain.RoleMallManager, domain.RoleAdmin},
	OpDelete:        {domain.RoleAdmin},
}

// Guard answers whether a role may invoke an operation.
type Guard struct{}

// NewGuard creates the authorization guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Allows reports whether role is in the allowed set for op.
func (g *Guard) Allows(role domain.Role, op Operation) bool {
	for _, candidate := range allowedRoles[op] {
		if candidate == role {
			return true
		}
	}
	return false
}

// Check returns a ForbiddenError when the role is outside the allowed set.
func (g *Guard) Check(role domain.Role, op Operation) error {
	if !g.Allows(role, op) {
		return &domain.ForbiddenError{Role: role, Operation: string(op)}
	}
	return nil
}
