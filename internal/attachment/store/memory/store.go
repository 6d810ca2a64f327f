package memory

import (
	"context"
	"sync"

	"meldingen/internal/attachment/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// Store keeps attachments in memory.
type Store struct {
	mu          sync.RWMutex
	attachments map[domain.AttachmentID]models.Attachment
	order       []domain.AttachmentID
}

func New() *Store {
	return &Store{attachments: make(map[domain.AttachmentID]models.Attachment)}
}

func (s *Store) Save(_ context.Context, a models.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.attachments[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.attachments[a.ID] = a
	return nil
}

func (s *Store) Retrieve(_ context.Context, id domain.AttachmentID) (*models.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attachments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *Store) FindByMelding(_ context.Context, meldingID domain.MeldingID) ([]models.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Attachment
	for _, id := range s.order {
		if a, ok := s.attachments[id]; ok && a.MeldingID == meldingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, id domain.AttachmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attachments[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.attachments, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
