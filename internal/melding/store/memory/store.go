package memory

import (
	"context"
	"sort"
	"sync"

	assetmodels "meldingen/internal/asset/models"
	attachmentmodels "meldingen/internal/attachment/models"
	"meldingen/internal/melding/models"
	meldingstore "meldingen/internal/melding/store"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// Store keeps meldingen in memory. It enforces the same version check as the
// postgres store so the lost-update behavior of the persistence boundary is
// testable without a database.
type Store struct {
	mu        sync.RWMutex
	meldingen map[domain.MeldingID]*models.Melding
	order     []domain.MeldingID
}

var _ meldingstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{meldingen: make(map[domain.MeldingID]*models.Melding)}
}

func (s *Store) Save(_ context.Context, m *models.Melding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.meldingen[m.ID]
	if exists && stored.Version != m.Version {
		return sentinel.ErrConflict
	}
	if !exists {
		s.order = append(s.order, m.ID)
	}

	m.Version++
	s.meldingen[m.ID] = clone(m)
	return nil
}

func (s *Store) Retrieve(_ context.Context, id domain.MeldingID) (*models.Melding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meldingen[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(m), nil
}

func (s *Store) List(_ context.Context, opts meldingstore.ListOptions) ([]*models.Melding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var states map[models.State]struct{}
	if len(opts.States) > 0 {
		states = make(map[models.State]struct{}, len(opts.States))
		for _, st := range opts.States {
			states[st] = struct{}{}
		}
	}

	var matched []*models.Melding
	for _, id := range s.order {
		m := s.meldingen[id]
		if states != nil {
			if _, ok := states[m.State]; !ok {
				continue
			}
		}
		matched = append(matched, m)
	}

	if opts.Sort == meldingstore.SortDesc {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	out := make([]*models.Melding, len(matched))
	for i, m := range matched {
		out[i] = clone(m)
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, id domain.MeldingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meldingen[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.meldingen, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// clone deep-copies a melding so callers never alias the store's state.
func clone(m *models.Melding) *models.Melding {
	cp := *m
	if m.Assets != nil {
		cp.Assets = append([]assetmodels.Asset(nil), m.Assets...)
	}
	if m.Attachments != nil {
		cp.Attachments = append([]attachmentmodels.Attachment(nil), m.Attachments...)
	}
	if m.Classification != nil {
		c := *m.Classification
		cp.Classification = &c
	}
	return &cp
}
