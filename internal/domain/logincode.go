package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoginCodeLength is the fixed width of a login code; leading zeros count.
const LoginCodeLength = 6

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail reports ErrInvalidEmail unless email is a bare address
// (no display name) such as "a@b.c" that fits the users.email column.
// Callers pass the normalized form.
func ValidateEmail(email string) error {
	return validateValue("Email", email, "required,max=120,email")
}

func NewLoginCode(userID uuid.UUID, code string, now time.Time, ttl time.Duration) *LoginCode {
	return &LoginCode{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// CodeExpired is true once now has passed the expiry instant. A code is still
// accepted at exactly ExpiresAt.
func CodeExpired(code *LoginCode, now time.Time) bool {
	return now.After(code.ExpiresAt)
}

func CodeValid(code *LoginCode, now time.Time) bool {
	return !code.Used && !CodeExpired(code, now)
}
