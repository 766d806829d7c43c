package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner             = "owner"
	RoleAccountant        = "accountant"
	RoleAuditor           = "auditor"
	RoleAnalyst           = "analyst"
	RoleSuperAdmin        = "super_admin"
	RoleSystemIntegration = "system_integration" // hidden role
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleSystemIntegration }
