package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists audit events in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE audit_events (
//	    id          BIGSERIAL PRIMARY KEY,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    request_id  TEXT NOT NULL DEFAULT '',
//	    actor       TEXT NOT NULL DEFAULT '',
//	    wallet      TEXT NOT NULL DEFAULT '',
//	    action      TEXT NOT NULL,
//	    outcome     TEXT NOT NULL DEFAULT '',
//	    reason      TEXT NOT NULL DEFAULT '',
//	    client_ip   TEXT NOT NULL DEFAULT '',
//	    device      TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX audit_events_wallet_idx ON audit_events (wallet);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (occurred_at, request_id, actor, wallet, action, outcome, reason, client_ip, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Timestamp, event.RequestID, event.Actor, event.Wallet,
		string(event.Action), event.Outcome, event.Reason, event.ClientIP, event.Device,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByWallet(ctx context.Context, wallet string) ([]Event, error) {
	query := `
		SELECT occurred_at, request_id, actor, wallet, action, outcome, reason, client_ip, device
		FROM audit_events
		WHERE wallet = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.Timestamp, &e.RequestID, &e.Actor, &e.Wallet,
			&action, &e.Outcome, &e.Reason, &e.ClientIP, &e.Device); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
