//go:build integration

package document_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"docproof/internal/document"
	"docproof/pkg/platform/sentinel"
	"docproof/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *document.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = document.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "issued_documents"))
}

func testDoc(hash string) *document.IssuedDocument {
	return &document.IssuedDocument{
		ID:           uuid.New(),
		PersonName:   "Alice",
		PersonWallet: "0x8ba1f109551bd432803012645ac136ddd64dba72",
		DocType:      "Degree",
		OrgWallet:    "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		OrgName:      "Acme University",
		DocHash:      hash,
		IssuedAt:     time.Now().UTC(),
		Valid:        true,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, testDoc("0xhash-1")))

	doc, err := s.store.FindByHash(ctx, "0xhash-1")
	s.Require().NoError(err)
	s.Equal("0x8ba1f109551bd432803012645ac136ddd64dba72", doc.PersonWallet)
	s.True(doc.Valid)

	_, err = s.store.FindByHash(ctx, "0xunknown")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentDuplicateIssue verifies the unique doc_hash index admits
// exactly one of many racing inserts of the same content.
func (s *PostgresStoreSuite) TestConcurrentDuplicateIssue() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.Create(ctx, testDoc("0xhash-race")); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.EqualValues(1, wins.Load())
}

func (s *PostgresStoreSuite) TestDuplicateIsConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, testDoc("0xhash-1")))
	s.ErrorIs(s.store.Create(ctx, testDoc("0xhash-1")), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestCountValid() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, testDoc("0xhash-1")))
	invalid := testDoc("0xhash-2")
	invalid.Valid = false
	s.Require().NoError(s.store.Create(ctx, invalid))

	n, err := s.store.CountValid(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}
