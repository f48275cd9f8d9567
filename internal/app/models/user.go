package models

import (
	"time"
)

// RoleType defines the staff role type
type RoleType string

const (
	RoleAdmin     RoleType = "ADMIN"
	RoleRegistrar RoleType = "REGISTRAR"
)

// User defines a staff account based on the 'users' table. Students and
// professors are records managed by staff, not accounts.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Username    string     `json:"username" db:"username" example:"admin"`
	Password    string     `json:"-" db:"password"` // bcrypt hash
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"ADMIN"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}
