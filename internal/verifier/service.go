package verifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"docproof/internal/audit"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/sentinel"
)

// TokenMinter issues verifier session credentials; satisfied by
// *auth.TokenIssuer.
type TokenMinter interface {
	IssueVerifier(accountID, email string) (string, error)
}

// AuditSink records domain events; satisfied by *audit.Publisher.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements verifier account lifecycle and verification recording.
type Service struct {
	store   Store
	tokens  TokenMinter
	auditor AuditSink
	now     func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, tokens TokenMinter, auditor AuditSink, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		tokens:  tokens,
		auditor: auditor,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *SignUpRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *SignUpRequest) validate() error {
	var fields []dErrors.FieldViolation
	add := func(field, message string) {
		fields = append(fields, dErrors.FieldViolation{Field: field, Message: message})
	}

	if !govalidator.StringLength(r.FirstName, "2", "20") {
		add("firstName", "first name must be between 2 and 20 characters")
	}
	if !govalidator.StringLength(r.LastName, "2", "20") {
		add("lastName", "last name must be between 2 and 20 characters")
	}
	if !govalidator.IsEmail(r.Email) {
		add("email", "invalid email format")
	}
	if len(r.Password) < 8 {
		add("password", "password must be at least 8 characters")
	}

	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// SignUp registers a verifier account. Emails are unique; registering an
// address that already exists is a conflict, never a silent overwrite.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*Verifier, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "password hashing failed", err)
	}

	v := &Verifier{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "verifier create failed", err)
	}

	_ = s.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionVerifierSignup,
		Outcome: v.Email,
	})
	return v, nil
}

// SignIn checks credentials and mints a session token. Unknown accounts and
// wrong passwords produce the same error so the response does not reveal
// which emails are registered.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *Verifier, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	v, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return "", nil, dErrors.Wrap(dErrors.CodeInternal, "verifier lookup failed", err)
	}
	if err := VerifyPassword(v.PasswordHash, password); err != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	token, err := s.tokens.IssueVerifier(v.ID.String(), v.Email)
	if err != nil {
		return "", nil, dErrors.Wrap(dErrors.CodeInternal, "session token issue failed", err)
	}
	return token, v, nil
}

// RecordVerification appends a verification event for a content-addressed
// artifact.
func (s *Service) RecordVerification(ctx context.Context, name, email, cid string) (*VerificationEvent, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	cid = strings.TrimSpace(cid)

	var fields []dErrors.FieldViolation
	if name == "" {
		fields = append(fields, dErrors.FieldViolation{Field: "name", Message: "name is required"})
	}
	if !govalidator.IsEmail(email) {
		fields = append(fields, dErrors.FieldViolation{Field: "email", Message: "invalid email format"})
	}
	if cid == "" {
		fields = append(fields, dErrors.FieldViolation{Field: "cid", Message: "cid is required"})
	}
	if len(fields) > 0 {
		return nil, dErrors.NewValidation(fields)
	}

	event := &VerificationEvent{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CID:       cid,
		Timestamp: s.now().UTC(),
	}
	if err := s.store.AppendVerification(ctx, event); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "verification record failed", err)
	}

	_ = s.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionVerification,
		Outcome: cid,
	})
	return event, nil
}

// ByID returns the verifier account for an authenticated session.
func (s *Service) ByID(ctx context.Context, id uuid.UUID) (*Verifier, error) {
	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verifier not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "verifier lookup failed", err)
	}
	return v, nil
}

// CountVerifications reports the total number of recorded verification
// events.
func (s *Service) CountVerifications(ctx context.Context) (int64, error) {
	n, err := s.store.CountVerifications(ctx)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "verification count failed", err)
	}
	return n, nil
}
