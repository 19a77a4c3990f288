// Package auth implements the wallet challenge-response protocol: signature
// recovery over the stored nonce, consume-and-replace rotation, and session
// credential issuance.
package auth

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"docproof/internal/audit"
	authmetrics "docproof/internal/auth/metrics"
	"docproof/internal/organization"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/sentinel"
)

// OrganizationStore is the slice of the organization store authentication
// needs: challenge lookup and compare-and-set rotation.
type OrganizationStore interface {
	FindByWallet(ctx context.Context, wallet string) (*organization.Organization, error)
	RotateNonce(ctx context.Context, wallet, oldNonce, newNonce string) error
}

// Lockout bounds failed authentication attempts per wallet within a window.
// A nil-safe no-op implementation is acceptable for tests.
type Lockout interface {
	Allow(ctx context.Context, wallet string) (bool, error)
	RecordFailure(ctx context.Context, wallet string) error
	Reset(ctx context.Context, wallet string) error
}

// AuditSink records authentication events; satisfied by *audit.Publisher.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result is a successful authentication: the session credential plus the
// organization's current issuer capability.
type Result struct {
	Token       string `json:"token"`
	KYCVerified bool   `json:"isKycVerified"`
}

// Service verifies wallet signatures against stored nonces and mints
// sessions.
type Service struct {
	orgs    OrganizationStore
	tokens  *TokenIssuer
	lockout Lockout
	auditor AuditSink
	metrics *authmetrics.Metrics
	tracer  trace.Tracer
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithLockout enables failed-attempt throttling.
func WithLockout(l Lockout) ServiceOption {
	return func(s *Service) { s.lockout = l }
}

// WithMetrics attaches the auth Prometheus metrics.
func WithMetrics(m *authmetrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(orgs OrganizationStore, tokens *TokenIssuer, auditor AuditSink, opts ...ServiceOption) *Service {
	s := &Service{
		orgs:    orgs,
		tokens:  tokens,
		auditor: auditor,
		tracer:  otel.Tracer("docproof/auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate verifies a signature over the organization's CURRENT stored
// nonce and, on success, atomically rotates the nonce and issues a session.
//
// The message the signature must cover is always the stored nonce, never a
// client-supplied value; stale or replayed signatures fail as soon as the
// nonce has rotated. Two concurrent attempts against the same nonce cannot
// both succeed: the rotation is a compare-and-set and the loser is rejected.
func (s *Service) Authenticate(ctx context.Context, wallet, signature string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Authenticate")
	defer span.End()

	wallet = organization.NormalizeWallet(wallet)
	if !common.IsHexAddress(wallet) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address")
	}
	if signature == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "signature is required")
	}

	if s.lockout != nil {
		allowed, err := s.lockout.Allow(ctx, wallet)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "lockout check failed", err)
		}
		if !allowed {
			s.observe("locked_out")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "too many failed attempts, request a new challenge later")
		}
	}

	org, err := s.orgs.FindByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observe("unknown_wallet")
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found, request a challenge first")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "organization lookup failed", err)
	}

	recovered, err := RecoverAddress(org.Nonce, signature)
	if err != nil || !AddressesEqual(recovered.Hex(), wallet) {
		s.observe("bad_signature")
		s.recordFailure(ctx, wallet, "signature mismatch")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid signature")
	}

	newNonce, err := organization.NewNonce()
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "nonce generation failed", err)
	}
	if err := s.orgs.RotateNonce(ctx, wallet, org.Nonce, newNonce); err != nil {
		if errors.Is(err, sentinel.ErrStaleNonce) {
			// A concurrent attempt consumed this nonce first.
			s.observe("stale_nonce")
			s.recordFailure(ctx, wallet, "nonce already consumed")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "challenge expired, request a new one")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "nonce rotation failed", err)
	}

	token, err := s.tokens.IssueOrganization(org.ID.String(), org.WalletAddress)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "session issuance failed", err)
	}

	if s.lockout != nil {
		_ = s.lockout.Reset(ctx, wallet)
	}
	s.observe("success")
	_ = s.auditor.Emit(ctx, audit.Event{
		Wallet:  wallet,
		Action:  audit.ActionAuthSuccess,
		Outcome: "session_issued",
	})

	return &Result{
		Token:       token,
		KYCVerified: org.IsKYCVerified(),
	}, nil
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.Observe(outcome)
	}
}

func (s *Service) recordFailure(ctx context.Context, wallet, reason string) {
	if s.lockout != nil {
		_ = s.lockout.RecordFailure(ctx, wallet)
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Wallet:  wallet,
		Action:  audit.ActionAuthFailure,
		Outcome: "rejected",
		Reason:  reason,
	})
}
