package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account record. Staff users are created by an administrator;
// patient accounts are provisioned automatically when a booking's
// consultation completes.
type User struct {
	Base
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	IsStaff      bool   `db:"is_staff" json:"is_staff"`
	// IsActive is false for auto-provisioned accounts until the patient
	// completes a password reset.
	IsActive bool `db:"is_active" json:"is_active"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UsernameFromEmail derives the base username for a provisioned account from
// the email's local part. Collisions are resolved by the repository with a
// numeric suffix under the provisioning transaction's lock.
func UsernameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	return strings.ToLower(local)
}

// SplitFullName splits a booking's free-text patient name into first and
// last name on the first space.
func SplitFullName(name string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

type TokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	IsStaff   bool      `json:"is_staff"`
	ExpiresAt time.Time `json:"expires_at"`
}
