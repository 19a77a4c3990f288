package organization

import (
	"context"

	"github.com/google/uuid"
)

// Store persists organization records. Implementations return
// pkg/platform/sentinel errors for factual failures:
//
//   - Create: sentinel.ErrConflict on a duplicate wallet
//   - FindByWallet / FindByID: sentinel.ErrNotFound when absent
//   - RotateNonce: sentinel.ErrStaleNonce when the compare-and-swap loses,
//     i.e. the stored nonce no longer equals oldNonce. This is what makes
//     the challenge single-use under concurrent authentication attempts.
//   - SetStatus: must update the status in a single atomic write and is the
//     only mutation path for the approval state outside of ReplaceKYC.
type Store interface {
	Create(ctx context.Context, org *Organization) error
	FindByWallet(ctx context.Context, wallet string) (*Organization, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	RotateNonce(ctx context.Context, wallet, oldNonce, newNonce string) error
	ReplaceKYC(ctx context.Context, wallet string, kyc KYCDetails) (*Organization, error)
	SetStatus(ctx context.Context, wallet string, status KYCStatus) (*Organization, error)
	ListByStatus(ctx context.Context, status KYCStatus) ([]*Organization, error)
	CountByStatus(ctx context.Context, status KYCStatus) (int64, error)
}
