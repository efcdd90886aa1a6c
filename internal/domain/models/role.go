// internal/domain/models/role.go
package models

import "strings"

// Role is an account category. The set is closed; see ParseRole.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDirector  Role = "director"
	RoleProfessor Role = "professor"
	RoleStudent   Role = "student"
	RolePerson    Role = "person" // generic person, no academic affiliation
)

// roleAliases maps stored spellings (including the Portuguese ones the
// backend writes) onto the closed role set.
var roleAliases = map[string]Role{
	"admin":     RoleAdmin,
	"director":  RoleDirector,
	"diretor":   RoleDirector,
	"professor": RoleProfessor,
	"student":   RoleStudent,
	"aluno":     RoleStudent,
	"estudante": RoleStudent,
	"person":    RolePerson,
	"pessoa":    RolePerson,
}

// ParseRole normalizes a stored role value. ok is false when the value is
// not one of the known spellings.
func ParseRole(s string) (Role, bool) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

// Roles returns every role in the closed set.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDirector, RoleProfessor, RoleStudent, RolePerson}
}

func (r Role) String() string { return string(r) }
