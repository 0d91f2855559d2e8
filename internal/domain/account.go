package domain

import (
	"strings"
	"time"
)

// Account is the persisted user entity going through registration,
// email verification and password-reset requests.
type Account struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	PasswordHash      string
	Verified          bool
	VerificationCode  string
	PasswordResetCode string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MarkVerified flips the account to verified. It never reverts.
func (a *Account) MarkVerified() {
	a.Verified = true
}

// NormalizeEmail trims and lower-cases an address so lookups and the
// uniqueness constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
