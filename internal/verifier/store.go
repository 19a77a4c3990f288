package verifier

import (
	"context"

	"github.com/google/uuid"
)

// Store persists verifier accounts and verification events.
// Implementations return sentinel.ErrNotFound for unknown accounts and
// sentinel.ErrConflict for duplicate emails.
type Store interface {
	Create(ctx context.Context, v *Verifier) error
	FindByEmail(ctx context.Context, email string) (*Verifier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Verifier, error)

	AppendVerification(ctx context.Context, event *VerificationEvent) error
	CountVerifications(ctx context.Context) (int64, error)
}
