package types

import "fmt"

// Role is the job function of a user. The core only consumes it for authorization.
type Role string

const (
	RoleAtendente         Role = "atendente"
	RoleCalculista        Role = "calculista"
	RoleGerenteFechamento Role = "gerente_fechamento"
	RoleFinanceiro        Role = "financeiro"
	RoleSuperadmin        Role = "superadmin"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleAtendente,
		RoleCalculista,
		RoleGerenteFechamento,
		RoleFinanceiro,
		RoleSuperadmin,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAtendente,
		RoleCalculista,
		RoleGerenteFechamento,
		RoleFinanceiro,
		RoleSuperadmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}
