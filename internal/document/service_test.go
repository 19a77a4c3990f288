package document

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docproof/internal/audit"
	"docproof/internal/organization"
	"docproof/internal/verifier"
	dErrors "docproof/pkg/domain-errors"
)

const (
	walletAlice = "0x8ba1f109551bd432803012645ac136ddd64dba72"
	walletOrg   = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
)

type fixture struct {
	svc       *Service
	orgs      *organization.InMemoryStore
	verifiers *verifier.InMemoryStore
	trail     *audit.InMemoryStore
	accountID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orgs := organization.NewInMemoryStore()
	verifiers := verifier.NewInMemoryStore()
	trail := audit.NewInMemoryStore()

	// An organization account acts as the issuing principal.
	accountID := uuid.New()
	require.NoError(t, orgs.Create(context.Background(), &organization.Organization{
		ID:            accountID,
		WalletAddress: walletOrg,
		Nonce:         "abc123",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}))

	svc := NewService(
		NewInMemoryStore(),
		orgs,
		verifiers,
		audit.NewPublisher(trail),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
	return &fixture{svc: svc, orgs: orgs, verifiers: verifiers, trail: trail, accountID: accountID}
}

func validIssue() IssueRequest {
	return IssueRequest{
		PersonName:   "Alice",
		PersonWallet: walletAlice,
		DocType:      "Degree",
		OrgWallet:    walletOrg,
		OrgName:      "Acme University",
		DocHash:      "0xdeadbeef01",
	}
}

func TestIssueRecordsDocument(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.Issue(context.Background(), f.accountID, validIssue())
	require.NoError(t, err)

	assert.True(t, doc.Valid)
	assert.Equal(t, walletAlice, doc.PersonWallet)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), doc.IssuedAt)

	events := f.trail.All()
	require.NotEmpty(t, events)
	assert.Equal(t, audit.ActionDocIssued, events[len(events)-1].Action)
}

func TestIssueDuplicateHashConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), f.accountID, validIssue())
	require.NoError(t, err)

	// Same hash from a different organization is still a duplicate.
	req := validIssue()
	req.OrgName = "Other University"
	_, err = f.svc.Issue(context.Background(), f.accountID, req)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestIssueUnknownPrincipalIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), uuid.New(), validIssue())
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestIssueVerifierPrincipalAllowed(t *testing.T) {
	f := newFixture(t)

	verifierID := uuid.New()
	require.NoError(t, f.verifiers.Create(context.Background(), &verifier.Verifier{
		ID:        verifierID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}))

	_, err := f.svc.Issue(context.Background(), verifierID, validIssue())
	require.NoError(t, err)
}

func TestIssueReportsEveryViolation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), f.accountID, IssueRequest{
		PersonWallet: "not-an-address",
		OrgWallet:    "also-bad",
	})
	var dErr *dErrors.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dErrors.CodeValidation, dErr.Code)
	assert.Len(t, dErr.Fields, 6)
}

func TestLookupRecipient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), f.accountID, validIssue())
	require.NoError(t, err)

	wallet, err := f.svc.LookupRecipient(context.Background(), "0xdeadbeef01")
	require.NoError(t, err)
	assert.Equal(t, walletAlice, wallet)

	_, err = f.svc.LookupRecipient(context.Background(), "0xunknown")
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestDashboardStatsAggregates(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), f.accountID, validIssue())
	require.NoError(t, err)

	req := validIssue()
	req.DocHash = "0xdeadbeef02"
	_, err = f.svc.Issue(context.Background(), f.accountID, req)
	require.NoError(t, err)

	require.NoError(t, f.verifiers.AppendVerification(context.Background(), &verifier.VerificationEvent{
		ID: uuid.New(), Name: "Ada", Email: "ada@example.com", CID: "bafy-1",
	}))

	_, err = f.orgs.ReplaceKYC(context.Background(), walletOrg, organization.KYCDetails{
		OrgName: "Acme University",
		Status:  organization.StatusPending,
	})
	require.NoError(t, err)
	_, err = f.orgs.SetStatus(context.Background(), walletOrg, organization.StatusApproved)
	require.NoError(t, err)

	stats, err := f.svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.DocumentsIssued)
	assert.EqualValues(t, 1, stats.VerificationsRecorded)
	assert.EqualValues(t, 1, stats.OrganizationsApproved)
}
