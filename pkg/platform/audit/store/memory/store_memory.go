package memory

import (
	"context"
	"sync"

	audit "meldingen/pkg/platform/audit"
	"meldingen/pkg/domain"
)

// InMemoryStore keeps audit events per melding. Test and development use.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.MeldingID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.MeldingID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.MeldingID] = append(s.events[event.MeldingID], event)
	return nil
}

func (s *InMemoryStore) ListByMelding(_ context.Context, id domain.MeldingID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events[id]...), nil
}
