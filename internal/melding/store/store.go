// Package store defines the melding persistence contract shared by the
// memory and postgres implementations.
package store

import (
	"context"

	"meldingen/internal/melding/models"
	"meldingen/pkg/domain"
)

// SortDirection orders list results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListOptions narrows and pages a melding listing. Zero values mean "no
// constraint".
type ListOptions struct {
	Limit  int
	Offset int
	States []models.State
	// Sort orders by creation time; default is ascending.
	Sort SortDirection
}

// Store is the full melding repository contract. Implementations must make
// the retrieve→mutate→save cycle safe under concurrent access: Save fails
// with sentinel.ErrConflict when the stored version advanced since the
// melding was retrieved.
type Store interface {
	Save(ctx context.Context, m *models.Melding) error
	Retrieve(ctx context.Context, id domain.MeldingID) (*models.Melding, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Melding, error)
	Delete(ctx context.Context, id domain.MeldingID) error
}
