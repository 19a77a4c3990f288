// Package verifier holds verifier accounts (conventional email/password
// credentials) and the verification events they submit.
package verifier

import (
	"time"

	"github.com/google/uuid"
)

// Verifier is an account that inspects dashboards and records verification
// events. PasswordHash is a bcrypt hash, never the raw password.
type Verifier struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VerificationEvent references an externally stored file by its
// content-addressed id.
type VerificationEvent struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CID       string    `json:"cid"`
	Timestamp time.Time `json:"timestamp"`
}
