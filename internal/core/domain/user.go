package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleGuest  Role = "Guest"
	RoleFoster Role = "Foster"
	RoleStaff  Role = "Staff"
	RoleAdmin  Role = "Admin"
)

var (
	// StaffRoles may manage animals, applications and media.
	StaffRoles = []Role{RoleAdmin, RoleStaff}
	// AdminRoles may perform destructive operations.
	AdminRoles = []Role{RoleAdmin}
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case RoleGuest:
		return RoleGuest, nil
	case RoleFoster:
		return RoleFoster, nil
	case RoleStaff:
		return RoleStaff, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", Validationf("unknown role %q", s)
}

func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleStaff
}

// In reports whether r is one of roles.
func (r Role) In(roles []Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

type User struct {
	ID          string     `json:"id"`
	Subject     *string    `json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type UserFilter struct {
	Role       *Role
	ActiveOnly bool
	Limit      int
	Offset     int
}
