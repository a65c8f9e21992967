package models

import (
	"time"

	"gorm.io/gorm"
)

// OTP is a short-lived verification code scoped by (email, purpose).
// Rows are never deleted; a code leaves circulation by being used,
// superseded by a newer issuance, or expiring.
type OTP struct {
	gorm.Model
	Email     string    `gorm:"not null;index"`
	Code      string    `gorm:"not null"`
	Purpose   string    `gorm:"not null;index"` // OTPPurpose* constants
	ExpiresAt time.Time `gorm:"not null"`
	IsUsed    bool      `gorm:"default:false"`
	UserID    string    `gorm:"index"`
	Platform  string
	UsedAt    *time.Time
}

// OTP purposes
const (
	OTPPurposeEmailVerification = "EMAIL_VERIFICATION"
	OTPPurposePasswordReset     = "PASSWORD_RESET"
)

// OTP expiry windows. Registration uses the shorter window.
const (
	OTPDefaultTTL      = 15 * time.Minute
	OTPRegistrationTTL = 10 * time.Minute
)

// ValidOTPPurpose reports whether p is a known OTP purpose.
func ValidOTPPurpose(p string) bool {
	return p == OTPPurposeEmailVerification || p == OTPPurposePasswordReset
}

// Active reports whether the code is still usable at the given time.
func (o *OTP) Active(now time.Time) bool {
	return !o.IsUsed && o.ExpiresAt.After(now)
}
