package projects

import "time"

// MemberRole is a member's standing within a project.
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Valid reports whether r is a known member role.
func (r MemberRole) Valid() bool {
	switch r {
	case MemberRoleAdmin, MemberRoleMember:
		return true
	default:
		return false
	}
}

// Project groups documents and the people allowed to sign or manage them.
type Project struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// Member grants a user access to a project.
type Member struct {
	ProjectID string
	UserID    string
	Role      MemberRole
	AddedAt   time.Time
}
