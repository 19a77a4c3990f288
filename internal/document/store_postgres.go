package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"docproof/pkg/platform/sentinel"
)

// PostgresStore persists issuance records.
//
// Schema:
//
//	CREATE TABLE issued_documents (
//	    id            UUID PRIMARY KEY,
//	    person_name   TEXT NOT NULL,
//	    person_wallet TEXT NOT NULL,
//	    doc_type      TEXT NOT NULL,
//	    org_wallet    TEXT NOT NULL,
//	    org_name      TEXT NOT NULL,
//	    doc_hash      TEXT NOT NULL UNIQUE,
//	    issued_at     TIMESTAMPTZ NOT NULL,
//	    valid         BOOLEAN NOT NULL DEFAULT TRUE
//	);
//
// The unique index on doc_hash is what makes duplicate detection atomic:
// concurrent issuers of the same content race on the insert and exactly one
// wins.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, doc *IssuedDocument) error {
	query := `
		INSERT INTO issued_documents
			(id, person_name, person_wallet, doc_type, org_wallet, org_name, doc_hash, issued_at, valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		doc.ID, doc.PersonName, doc.PersonWallet, doc.DocType,
		doc.OrgWallet, doc.OrgName, doc.DocHash, doc.IssuedAt, doc.Valid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create issued document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByHash(ctx context.Context, docHash string) (*IssuedDocument, error) {
	query := `
		SELECT id, person_name, person_wallet, doc_type, org_wallet, org_name, doc_hash, issued_at, valid
		FROM issued_documents
		WHERE doc_hash = $1
	`
	var doc IssuedDocument
	err := s.db.QueryRowContext(ctx, query, docHash).Scan(
		&doc.ID, &doc.PersonName, &doc.PersonWallet, &doc.DocType,
		&doc.OrgWallet, &doc.OrgName, &doc.DocHash, &doc.IssuedAt, &doc.Valid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issued document: %w", err)
	}
	return &doc, nil
}

func (s *PostgresStore) CountValid(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM issued_documents WHERE valid`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count issued documents: %w", err)
	}
	return n, nil
}
