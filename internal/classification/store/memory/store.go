package memory

import (
	"context"
	"sync"

	"meldingen/internal/classification/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// Store keeps classifications in memory. It favors clarity over performance;
// the name index exists because FindByName sits on the hot path of every
// classification attempt.
type Store struct {
	mu      sync.RWMutex
	byID    map[domain.ClassificationID]*models.Classification
	byName  map[string]domain.ClassificationID
}

func New() *Store {
	return &Store{
		byID:   make(map[domain.ClassificationID]*models.Classification),
		byName: make(map[string]domain.ClassificationID),
	}
}

func (s *Store) Save(_ context.Context, c *models.Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byID[c.ID]; ok && prev.Name != c.Name {
		delete(s.byName, prev.Name)
	}
	cp := *c
	s.byID[c.ID] = &cp
	s.byName[c.Name] = c.ID
	return nil
}

func (s *Store) Retrieve(_ context.Context, id domain.ClassificationID) (*models.Classification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) FindByName(_ context.Context, name string) (*models.Classification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return nil, sentinel.ErrClassificationNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *Store) List(_ context.Context) ([]*models.Classification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Classification, 0, len(s.byID))
	for _, c := range s.byID {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, id domain.ClassificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byName, c.Name)
	delete(s.byID, id)
	return nil
}
