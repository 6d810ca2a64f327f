package audit

import (
	"context"

	"meldingen/pkg/domain"
)

// Store persists lifecycle audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByMelding(ctx context.Context, id domain.MeldingID) ([]Event, error)
}
