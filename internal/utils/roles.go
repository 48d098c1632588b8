package utils

import "strings"

const (
	RoleAdmin          = "admin"
	RolePresidente     = "presidente"
	RoleLiderEstatal   = "lider_estatal"
	RoleLiderRegional  = "lider_regional"
	RoleLiderMunicipal = "lider_municipal"
	RoleLiderZona      = "lider_zona"
	RoleCapturista     = "capturista"
	RoleCiudadano      = "ciudadano"
)

var validRoles = map[string]struct{}{
	RoleAdmin: {}, RolePresidente: {}, RoleLiderEstatal: {}, RoleLiderRegional: {},
	RoleLiderMunicipal: {}, RoleLiderZona: {}, RoleCapturista: {}, RoleCiudadano: {},
}

func ValidRole(role string) bool {
	_, ok := validRoles[role]
	return ok
}

// IsLeader reports whether the role sits in the mobilization hierarchy:
// presidente or any lider_* role.
func IsLeader(role string) bool {
	return role == RolePresidente || strings.HasPrefix(role, "lider_")
}
