package organization

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"docproof/pkg/platform/sentinel"
)

// PostgresStore persists organizations in PostgreSQL. The KYC profile lives
// in a JSONB column so a resubmission is a single full-document overwrite
// and a decision is a single jsonb_set, both atomic.
//
// Schema:
//
//	CREATE TABLE organizations (
//	    id             UUID PRIMARY KEY,
//	    wallet_address TEXT NOT NULL UNIQUE,
//	    nonce          TEXT NOT NULL,
//	    kyc_details    JSONB,
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, org *Organization) error {
	kyc, err := marshalKYC(org.KYC)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO organizations (id, wallet_address, nonce, kyc_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err = s.db.ExecContext(ctx, query, org.ID, NormalizeWallet(org.WalletAddress), org.Nonce, kyc)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByWallet(ctx context.Context, wallet string) (*Organization, error) {
	row := s.db.QueryRowContext(ctx, selectOrg+` WHERE wallet_address = $1`, NormalizeWallet(wallet))
	return scanOrg(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	row := s.db.QueryRowContext(ctx, selectOrg+` WHERE id = $1`, id)
	return scanOrg(row)
}

// RotateNonce is a compare-and-set: the update only applies while the stored
// nonce still equals oldNonce. A lost race surfaces as ErrStaleNonce so the
// second concurrent authentication attempt fails instead of replaying.
func (s *PostgresStore) RotateNonce(ctx context.Context, wallet, oldNonce, newNonce string) error {
	query := `
		UPDATE organizations
		SET nonce = $3, updated_at = now()
		WHERE wallet_address = $1 AND nonce = $2
	`
	res, err := s.db.ExecContext(ctx, query, NormalizeWallet(wallet), oldNonce, newNonce)
	if err != nil {
		return fmt.Errorf("rotate nonce: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rotate nonce: %w", err)
	}
	if affected == 0 {
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM organizations WHERE wallet_address = $1)`,
			NormalizeWallet(wallet)).Scan(&exists)
		if err != nil {
			return fmt.Errorf("rotate nonce: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrStaleNonce
	}
	return nil
}

func (s *PostgresStore) ReplaceKYC(ctx context.Context, wallet string, kyc KYCDetails) (*Organization, error) {
	payload, err := marshalKYC(&kyc)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE organizations
		SET kyc_details = $2, updated_at = now()
		WHERE wallet_address = $1
		RETURNING id, wallet_address, nonce, kyc_details, created_at, updated_at
	`
	row := s.db.QueryRowContext(ctx, query, NormalizeWallet(wallet), payload)
	return scanOrg(row)
}

// SetStatus mutates only the status field inside the stored profile, in one
// statement, so no reader can observe a partial decision.
func (s *PostgresStore) SetStatus(ctx context.Context, wallet string, status KYCStatus) (*Organization, error) {
	query := `
		UPDATE organizations
		SET kyc_details = jsonb_set(kyc_details, '{status}', to_jsonb($2::text)), updated_at = now()
		WHERE wallet_address = $1 AND kyc_details IS NOT NULL
		RETURNING id, wallet_address, nonce, kyc_details, created_at, updated_at
	`
	row := s.db.QueryRowContext(ctx, query, NormalizeWallet(wallet), string(status))
	return scanOrg(row)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status KYCStatus) ([]*Organization, error) {
	query := selectOrg + ` WHERE kyc_details->>'status' = $1 ORDER BY updated_at DESC`
	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status KYCStatus) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM organizations WHERE kyc_details->>'status' = $1`,
		string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count organizations: %w", err)
	}
	return n, nil
}

const selectOrg = `
	SELECT id, wallet_address, nonce, kyc_details, created_at, updated_at
	FROM organizations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrg(row rowScanner) (*Organization, error) {
	var org Organization
	var kyc []byte
	err := row.Scan(&org.ID, &org.WalletAddress, &org.Nonce, &kyc, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	if len(kyc) > 0 {
		var details KYCDetails
		if err := json.Unmarshal(kyc, &details); err != nil {
			return nil, fmt.Errorf("decode kyc details: %w", err)
		}
		org.KYC = &details
	}
	return &org, nil
}

func marshalKYC(kyc *KYCDetails) (any, error) {
	if kyc == nil {
		return nil, nil
	}
	payload, err := json.Marshal(kyc)
	if err != nil {
		return nil, fmt.Errorf("encode kyc details: %w", err)
	}
	return payload, nil
}
