package verifier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docproof/internal/audit"
	dErrors "docproof/pkg/domain-errors"
)

type stubMinter struct {
	token string
	err   error
}

func (m stubMinter) IssueVerifier(accountID, email string) (string, error) {
	return m.token, m.err
}

func newTestService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	trail := audit.NewInMemoryStore()
	svc := NewService(
		NewInMemoryStore(),
		stubMinter{token: "session-token"},
		audit.NewPublisher(trail),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
	return svc, trail
}

func validSignUp() SignUpRequest {
	return SignUpRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
	}
}

func TestSignUpHashesPasswordAndLowercasesEmail(t *testing.T) {
	svc, _ := newTestService(t)

	req := validSignUp()
	req.Email = "Ada@Example.COM"
	v, err := svc.SignUp(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", v.Email)
	assert.NotEqual(t, "correct horse", v.PasswordHash)
	require.NoError(t, VerifyPassword(v.PasswordHash, "correct horse"))
}

func TestSignUpDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), validSignUp())
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestSignUpReportsEveryViolation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		FirstName: "A",
		LastName:  "",
		Email:     "not-an-email",
		Password:  "short",
	})
	require.Error(t, err)

	var dErr *dErrors.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, dErrors.CodeValidation, dErr.Code)
	assert.Len(t, dErr.Fields, 4)
}

func TestSignInRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	token, v, err := svc.SignIn(context.Background(), "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	assert.Equal(t, created.ID, v.ID)
}

func TestSignInWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	_, _, wrongPass := svc.SignIn(context.Background(), "ada@example.com", "wrong")
	_, _, unknown := svc.SignIn(context.Background(), "nobody@example.com", "wrong")

	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(wrongPass))
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestRecordVerificationValidatesAndAudits(t *testing.T) {
	svc, trail := newTestService(t)

	_, err := svc.RecordVerification(context.Background(), "", "bad", "")
	var dErr *dErrors.Error
	require.ErrorAs(t, err, &dErr)
	assert.Len(t, dErr.Fields, 3)

	event, err := svc.RecordVerification(context.Background(), "Ada Lovelace", "Ada@Example.com", "bafy-cert-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", event.Email)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), event.Timestamp)

	events := trail.All()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, audit.ActionVerification, last.Action)
	assert.Equal(t, "bafy-cert-1", last.Outcome)
}

func TestByIDUnknownIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ByID(context.Background(), uuid.New())
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestCountVerifications(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordVerification(context.Background(), "Ada", "ada@example.com", "bafy-cert")
		require.NoError(t, err)
	}
	n, err := svc.CountVerifications(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
