package models

import "time"

// User is the account notifications, OTPs and payments hang off.
type User struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Name            string     `json:"name,omitempty"`
	Role            string     `gorm:"default:user" json:"role"`
	IsEmailVerified bool       `gorm:"default:false" json:"is_email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Roles
const (
	RoleUser        = "user"
	RoleSystemAdmin = "system_admin"
)

// Client platforms. Every connection, OTP and payment is tagged with
// the platform it came from.
const (
	PlatformWeb    = "web"
	PlatformMobile = "mobile"
)

// ValidPlatform reports whether p is a known client platform.
func ValidPlatform(p string) bool {
	return p == PlatformWeb || p == PlatformMobile
}
