package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether role is one of the enumerated account roles.
func ValidRole(role Role) bool {
	return role == RoleUser || role == RoleAdmin
}

// User is an account record. PasswordHash is empty for accounts created
// through an external identity provider; those accounts cannot log in with
// credentials.
type User struct {
	ID                   string     `json:"id" db:"id"`
	Name                 string     `json:"name" db:"name"`
	Email                string     `json:"email" db:"email"`
	PasswordHash         string     `json:"-" db:"password_hash"`
	GoogleID             string     `json:"-" db:"google_id"`
	Role                 Role       `json:"role" db:"role"`
	IsVerified           bool       `json:"is_verified" db:"is_verified"`
	VerificationToken    string     `json:"-" db:"verification_token"`
	ResetPasswordToken   string     `json:"-" db:"reset_password_token"`
	ResetPasswordExpires *time.Time `json:"-" db:"reset_password_expires"`
	ProfilePhoto         string     `json:"profile_photo" db:"profile_photo"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}
