// Package relationship manages many-to-many associations between entities
// when the persistence layer offers no native relationship cascade.
package relationship

import (
	"context"

	"meldingen/pkg/platform/sentinel"
)

// Accessor exposes one relation of a parent entity. It is an explicit
// strategy so a manager can be pointed at any relation without reflection.
type Accessor[P any, R any] interface {
	// Related returns the parent's current related set.
	Related(ctx context.Context, parent P) ([]R, error)
	// Attach appends related to the parent's in-memory collection. It does
	// not persist; the manager saves the parent afterwards.
	Attach(parent P, related R)
}

// Saver persists the parent after its relation changed.
type Saver[P any] interface {
	Save(ctx context.Context, parent P) error
}

// Manager guards a single relation between a parent type P and a related
// type R. "Already present" is structural equality of R values as supplied
// by the accessor; the manager performs no further deduplication.
type Manager[P any, R comparable] struct {
	saver    Saver[P]
	accessor Accessor[P, R]
}

func New[P any, R comparable](saver Saver[P], accessor Accessor[P, R]) *Manager[P, R] {
	return &Manager[P, R]{saver: saver, accessor: accessor}
}

// AddRelationship attaches related to parent and persists the parent.
// Returns sentinel.ErrRelationshipExists when the pair is already associated,
// leaving the relation set untouched.
func (m *Manager[P, R]) AddRelationship(ctx context.Context, parent P, related R) (P, error) {
	items, err := m.accessor.Related(ctx, parent)
	if err != nil {
		return parent, err
	}

	for _, item := range items {
		if item == related {
			return parent, sentinel.ErrRelationshipExists
		}
	}

	m.accessor.Attach(parent, related)

	if err := m.saver.Save(ctx, parent); err != nil {
		return parent, err
	}
	return parent, nil
}

// GetRelated returns the current related set unchanged. Read-through, no caching.
func (m *Manager[P, R]) GetRelated(ctx context.Context, parent P) ([]R, error) {
	return m.accessor.Related(ctx, parent)
}
