package verifier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"docproof/pkg/platform/sentinel"
)

// PostgresStore persists verifier accounts and verification events.
//
// Schema:
//
//	CREATE TABLE verifiers (
//	    id            UUID PRIMARY KEY,
//	    first_name    TEXT NOT NULL,
//	    last_name     TEXT NOT NULL,
//	    email         TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE verification_events (
//	    id          UUID PRIMARY KEY,
//	    name        TEXT NOT NULL,
//	    email       TEXT NOT NULL,
//	    cid         TEXT NOT NULL,
//	    occurred_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, v *Verifier) error {
	query := `
		INSERT INTO verifiers (id, first_name, last_name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.FirstName, v.LastName, strings.ToLower(v.Email), v.PasswordHash, v.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create verifier: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Verifier, error) {
	row := s.db.QueryRowContext(ctx, selectVerifier+` WHERE email = $1`, strings.ToLower(email))
	return scanVerifier(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Verifier, error) {
	row := s.db.QueryRowContext(ctx, selectVerifier+` WHERE id = $1`, id)
	return scanVerifier(row)
}

func (s *PostgresStore) AppendVerification(ctx context.Context, event *VerificationEvent) error {
	query := `
		INSERT INTO verification_events (id, name, email, cid, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Name, strings.ToLower(event.Email), event.CID, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountVerifications(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM verification_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count verifications: %w", err)
	}
	return n, nil
}

const selectVerifier = `
	SELECT id, first_name, last_name, email, password_hash, created_at
	FROM verifiers`

func scanVerifier(row *sql.Row) (*Verifier, error) {
	var v Verifier
	err := row.Scan(&v.ID, &v.FirstName, &v.LastName, &v.Email, &v.PasswordHash, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan verifier: %w", err)
	}
	return &v, nil
}
