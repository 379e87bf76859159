package entities

import (
	"time"
)

// Role is a platform role
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePlayer    Role = "player"
	RoleModerator Role = "moderator"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePlayer, RoleModerator:
		return true
	}
	return false
}

// IsStaff returns true for roles allowed to manage tournaments, games and reviews
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// User is a registered platform account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
