package organization

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docproof/internal/audit"
	orgmetrics "docproof/internal/organization/metrics"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/sentinel"
)

// AuditSink records domain events; satisfied by *audit.Publisher.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements challenge issuance and the KYC approval state machine.
type Service struct {
	store   Store
	auditor AuditSink
	metrics *orgmetrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithMetrics attaches the organization Prometheus metrics.
func WithMetrics(m *orgmetrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, auditor AuditSink, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		auditor: auditor,
		tracer:  otel.Tracer("docproof/organization"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewNonce returns a fresh 128-bit challenge value, hex encoded.
func NewNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Challenge returns the current nonce for a wallet, lazily creating the
// organization record on first sight. Safe to call any number of times; it
// never creates duplicates and never rotates an existing nonce.
func (s *Service) Challenge(ctx context.Context, wallet string) (string, error) {
	wallet = NormalizeWallet(wallet)
	if !common.IsHexAddress(wallet) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid wallet address")
	}

	org, err := s.store.FindByWallet(ctx, wallet)
	if err == nil {
		return org.Nonce, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.Wrap(dErrors.CodeInternal, "challenge lookup failed", err)
	}

	nonce, err := NewNonce()
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "nonce generation failed", err)
	}

	now := s.now().UTC()
	err = s.store.Create(ctx, &Organization{
		ID:            uuid.New(),
		WalletAddress: wallet,
		Nonce:         nonce,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		// Lost a creation race: another request registered the wallet first.
		// Its nonce is the authoritative one.
		if errors.Is(err, sentinel.ErrConflict) {
			org, err := s.store.FindByWallet(ctx, wallet)
			if err != nil {
				return "", dErrors.Wrap(dErrors.CodeInternal, "challenge lookup failed", err)
			}
			return org.Nonce, nil
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "organization create failed", err)
	}

	if s.metrics != nil {
		s.metrics.ChallengesIssued.Inc()
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Wallet:  wallet,
		Action:  audit.ActionAuthChallenge,
		Outcome: "issued",
	})
	return nonce, nil
}

// SubmitKYC validates the full profile and replaces the organization's KYC
// substructure wholesale. The state machine always lands in Pending; any
// prior approval is invalidated.
func (s *Service) SubmitKYC(ctx context.Context, wallet string, sub KYCSubmission) (*Organization, error) {
	wallet = NormalizeWallet(wallet)

	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	org, err := s.store.ReplaceKYC(ctx, wallet, sub.Details())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "kyc update failed", err)
	}

	if s.metrics != nil {
		s.metrics.KYCSubmissions.Inc()
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Wallet:  wallet,
		Action:  audit.ActionKYCSubmitted,
		Outcome: string(StatusPending),
	})
	return org, nil
}

// Decide applies an owner decision to a submitted profile. The status write
// is a single atomic update; since the verified flag is derived from status,
// no reader can ever observe the two out of sync.
//
// Authorization (owner-only) is enforced by middleware before this runs.
func (s *Service) Decide(ctx context.Context, wallet string, decision KYCStatus) (*Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organization.Decide",
		trace.WithAttributes(attribute.String("decision", string(decision))))
	defer span.End()

	wallet = NormalizeWallet(wallet)
	if !ValidDecision(decision) {
		return nil, dErrors.NewValidation([]dErrors.FieldViolation{
			{Field: "status", Message: "status must be Approved or Rejected"},
		})
	}

	org, err := s.store.SetStatus(ctx, wallet, decision)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "status update failed", err)
	}

	if s.metrics != nil {
		s.metrics.KYCDecisions.WithLabelValues(string(decision)).Inc()
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Wallet:  wallet,
		Action:  audit.ActionKYCDecision,
		Outcome: string(decision),
	})
	return org, nil
}

// Profile returns the organization for the authenticated wallet.
func (s *Service) Profile(ctx context.Context, wallet string) (*Organization, error) {
	org, err := s.store.FindByWallet(ctx, NormalizeWallet(wallet))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "organization lookup failed", err)
	}
	return org, nil
}

// ListPending returns every organization awaiting a decision.
func (s *Service) ListPending(ctx context.Context) ([]*Organization, error) {
	orgs, err := s.store.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "pending listing failed", err)
	}
	return orgs, nil
}

// CountApproved reports how many organizations hold an approved profile.
func (s *Service) CountApproved(ctx context.Context) (int64, error) {
	n, err := s.store.CountByStatus(ctx, StatusApproved)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "approved count failed", err)
	}
	return n, nil
}
