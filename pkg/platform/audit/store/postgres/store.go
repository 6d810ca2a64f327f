package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"meldingen/pkg/domain"
	audit "meldingen/pkg/platform/audit"
)

// Store persists the lifecycle audit trail in PostgreSQL. Append-only.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO melding_audit_events (timestamp, melding_id, action, from_state, to_state, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Timestamp, uuid.UUID(event.MeldingID), event.Action,
		event.FromState, event.ToState, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByMelding(ctx context.Context, id domain.MeldingID) ([]audit.Event, error) {
	query := `
		SELECT timestamp, melding_id, action, from_state, to_state, detail
		FROM melding_audit_events
		WHERE melding_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		var meldingID uuid.UUID
		if err := rows.Scan(&e.Timestamp, &meldingID, &e.Action, &e.FromState, &e.ToState, &e.Detail); err != nil {
			return nil, fmt.Errorf("list audit events: %w", err)
		}
		e.MeldingID = domain.MeldingID(meldingID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}
