package document

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docproof/internal/audit"
	docmetrics "docproof/internal/document/metrics"
	"docproof/internal/organization"
	"docproof/internal/verifier"
	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/sentinel"
)

// OrganizationDirectory resolves organization accounts; satisfied by
// organization.Store.
type OrganizationDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error)
	CountByStatus(ctx context.Context, status organization.KYCStatus) (int64, error)
}

// VerifierDirectory resolves verifier accounts and exposes the verification
// tally; satisfied by verifier.Store.
type VerifierDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*verifier.Verifier, error)
	CountVerifications(ctx context.Context) (int64, error)
}

// AuditSink records domain events; satisfied by *audit.Publisher.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements issuance, recipient lookup and dashboard statistics.
type Service struct {
	store     Store
	orgs      OrganizationDirectory
	verifiers VerifierDirectory
	auditor   AuditSink
	metrics   *docmetrics.Metrics
	now       func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithMetrics attaches the document Prometheus metrics.
func WithMetrics(m *docmetrics.Metrics) ServiceOption {
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

func NewService(store Store, orgs OrganizationDirectory, verifiers VerifierDirectory, auditor AuditSink, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		orgs:      orgs,
		verifiers: verifiers,
		auditor:   auditor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueRequest is the issuance payload.
type IssueRequest struct {
	PersonName   string `json:"personName"`
	PersonWallet string `json:"personWallet"`
	DocType      string `json:"docType"`
	OrgWallet    string `json:"orgWallet"`
	OrgName      string `json:"orgName"`
	DocHash      string `json:"docHash"`
}

func (r *IssueRequest) normalize() {
	r.PersonName = strings.TrimSpace(r.PersonName)
	r.PersonWallet = organization.NormalizeWallet(r.PersonWallet)
	r.DocType = strings.TrimSpace(r.DocType)
	r.OrgWallet = organization.NormalizeWallet(r.OrgWallet)
	r.OrgName = strings.TrimSpace(r.OrgName)
	r.DocHash = strings.TrimSpace(r.DocHash)
}

func (r *IssueRequest) validate() error {
	var fields []dErrors.FieldViolation
	add := func(field, message string) {
		fields = append(fields, dErrors.FieldViolation{Field: field, Message: message})
	}

	if r.PersonName == "" {
		add("personName", "person name is required")
	}
	if !common.IsHexAddress(r.PersonWallet) {
		add("personWallet", "invalid wallet address")
	}
	if r.DocType == "" {
		add("docType", "document type is required")
	}
	if !common.IsHexAddress(r.OrgWallet) {
		add("orgWallet", "invalid wallet address")
	}
	if r.OrgName == "" {
		add("orgName", "organization name is required")
	}
	if r.DocHash == "" {
		add("docHash", "document hash is required")
	}

	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Issue records a new issuance. The caller must resolve to a known account,
// verifier or organization. Duplicate content hashes are rejected atomically
// at the store level so two racing issuers can never both succeed.
func (s *Service) Issue(ctx context.Context, accountID uuid.UUID, req IssueRequest) (*IssuedDocument, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	if err := s.resolvePrincipal(ctx, accountID); err != nil {
		return nil, err
	}

	doc := &IssuedDocument{
		ID:           uuid.New(),
		PersonName:   req.PersonName,
		PersonWallet: req.PersonWallet,
		DocType:      req.DocType,
		OrgWallet:    req.OrgWallet,
		OrgName:      req.OrgName,
		DocHash:      req.DocHash,
		IssuedAt:     s.now().UTC(),
		Valid:        true,
	}
	if err := s.store.Create(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.observe("duplicate")
			return nil, dErrors.New(dErrors.CodeConflict, "document already issued")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "document create failed", err)
	}

	s.observe("issued")
	_ = s.auditor.Emit(ctx, audit.Event{
		Actor:   accountID.String(),
		Wallet:  req.OrgWallet,
		Action:  audit.ActionDocIssued,
		Outcome: req.DocHash,
	})
	return doc, nil
}

// LookupRecipient resolves the recipient wallet bound to an issued document
// hash.
func (s *Service) LookupRecipient(ctx context.Context, docHash string) (string, error) {
	docHash = strings.TrimSpace(docHash)
	if docHash == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "document hash is required")
	}

	doc, err := s.store.FindByHash(ctx, docHash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "no wallet address available for this document")
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "document lookup failed", err)
	}
	return doc.PersonWallet, nil
}

// DashboardStats fetches the three public counters concurrently. Any single
// failure fails the whole read; partial dashboards would be misleading.
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.store.CountValid(ctx)
		stats.DocumentsIssued = n
		return err
	})
	g.Go(func() error {
		n, err := s.verifiers.CountVerifications(ctx)
		stats.VerificationsRecorded = n
		return err
	})
	g.Go(func() error {
		n, err := s.orgs.CountByStatus(ctx, organization.StatusApproved)
		stats.OrganizationsApproved = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "dashboard stats failed", err)
	}
	return &stats, nil
}

// resolvePrincipal confirms the authenticated account exists, checking
// verifier accounts first and falling back to organizations.
func (s *Service) resolvePrincipal(ctx context.Context, accountID uuid.UUID) error {
	_, err := s.verifiers.FindByID(ctx, accountID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(dErrors.CodeInternal, "account lookup failed", err)
	}

	_, err = s.orgs.FindByID(ctx, accountID)
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(dErrors.CodeInternal, "account lookup failed", err)
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.Observe(outcome)
	}
}
