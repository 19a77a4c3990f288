//go:build integration

package verifier_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"docproof/internal/verifier"
	"docproof/pkg/platform/sentinel"
	"docproof/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *verifier.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = verifier.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(),
		"verifiers", "verification_events"))
}

func testVerifier() *verifier.Verifier {
	return &verifier.Verifier{
		ID:           uuid.New(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$stubstubstubstubstubstub",
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	v := testVerifier()
	s.Require().NoError(s.store.Create(ctx, v))

	// Lookup is case-insensitive on email.
	found, err := s.store.FindByEmail(ctx, "ADA@Example.com")
	s.Require().NoError(err)
	s.Equal(v.ID, found.ID)

	byID, err := s.store.FindByID(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", byID.Email)

	_, err = s.store.FindByEmail(ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, testVerifier()))

	dup := testVerifier()
	dup.ID = uuid.New()
	s.ErrorIs(s.store.Create(ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestVerificationEvents() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.AppendVerification(ctx, &verifier.VerificationEvent{
			ID:        uuid.New(),
			Name:      "Ada Lovelace",
			Email:     "ada@example.com",
			CID:       "bafy-cert-1",
			Timestamp: time.Now().UTC(),
		}))
	}

	n, err := s.store.CountVerifications(ctx)
	s.Require().NoError(err)
	s.EqualValues(3, n)
}
