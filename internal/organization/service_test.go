package organization

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docproof/internal/audit"
	dErrors "docproof/pkg/domain-errors"
)

const testWallet = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

func newTestService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	trail := audit.NewInMemoryStore()
	svc := NewService(
		NewInMemoryStore(),
		audit.NewPublisher(trail),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
	return svc, trail
}

func TestChallengeCreatesOrganizationOnFirstSight(t *testing.T) {
	svc, trail := newTestService(t)

	nonce, err := svc.Challenge(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Len(t, nonce, 32) // 16 random bytes, hex encoded

	events := trail.All()
	require.NotEmpty(t, events)
	assert.Equal(t, audit.ActionAuthChallenge, events[0].Action)
}

func TestChallengeIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Challenge(context.Background(), testWallet)
	require.NoError(t, err)

	// Repeated and differently cased requests return the same nonce.
	second, err := svc.Challenge(context.Background(), testWallet)
	require.NoError(t, err)
	third, err := svc.Challenge(context.Background(), "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestChallengeRejectsMalformedWallet(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Challenge(context.Background(), "not-a-wallet")
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestSubmitKYCLandsPending(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Challenge(context.Background(), testWallet)
	require.NoError(t, err)

	org, err := svc.SubmitKYC(context.Background(), testWallet, validSubmission())
	require.NoError(t, err)
	require.NotNil(t, org.KYC)
	assert.Equal(t, StatusPending, org.KYC.Status)
	assert.False(t, org.IsKYCVerified())
}

func TestSubmitKYCUnknownWalletIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SubmitKYC(context.Background(), testWallet, validSubmission())
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestResubmissionResetsApproval(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Challenge(context.Background(), testWallet)
	require.NoError(t, err)
	_, err = svc.SubmitKYC(context.Background(), testWallet, validSubmission())
	require.NoError(t, err)

	org, err := svc.Decide(context.Background(), testWallet, StatusApproved)
	require.NoError(t, err)
	assert.True(t, org.IsKYCVerified())

	// A fresh submission invalidates the earlier approval.
	sub := validSubmission()
	sub.OrgName = "Acme University Renamed"
	org, err = svc.SubmitKYC(context.Background(), testWallet, sub)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, org.KYC.Status)
	assert.False(t, org.IsKYCVerified())
	assert.Equal(t, "Acme University Renamed", org.KYC.OrgName)
}

func TestDecideTransitions(t *testing.T) {
	svc, trail := newTestService(t)

	_, err := svc.Challenge(context.Background(), testWallet)
	require.NoError(t, err)
	_, err = svc.SubmitKYC(context.Background(), testWallet, validSubmission())
	require.NoError(t, err)

	org, err := svc.Decide(context.Background(), testWallet, StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, org.KYC.Status)
	assert.False(t, org.IsKYCVerified())

	// A rejected profile can still be approved later by a new decision.
	org, err = svc.Decide(context.Background(), testWallet, StatusApproved)
	require.NoError(t, err)
	assert.True(t, org.IsKYCVerified())

	events := trail.All()
	var decisions int
	for _, e := range events {
		if e.Action == audit.ActionKYCDecision {
			decisions++
		}
	}
	assert.Equal(t, 2, decisions)
}

func TestDecideRejectsInvalidStatus(t *testing.T) {
	svc, _ := newTestService(t)

	for _, status := range []KYCStatus{StatusPending, "Banana", ""} {
		_, err := svc.Decide(context.Background(), testWallet, status)
		assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err), "status %q", status)
	}
}

func TestDecideUnknownWalletIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Decide(context.Background(), testWallet, StatusApproved)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestListPendingAndCountApproved(t *testing.T) {
	svc, _ := newTestService(t)

	wallets := []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"0x3333333333333333333333333333333333333333",
	}
	for _, w := range wallets {
		_, err := svc.Challenge(context.Background(), w)
		require.NoError(t, err)
		_, err = svc.SubmitKYC(context.Background(), w, validSubmission())
		require.NoError(t, err)
	}

	_, err := svc.Decide(context.Background(), wallets[0], StatusApproved)
	require.NoError(t, err)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	approved, err := svc.CountApproved(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, approved)
}
