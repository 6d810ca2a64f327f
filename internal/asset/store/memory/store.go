package memory

import (
	"context"
	"sync"

	"meldingen/internal/asset/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// AssetStore keeps assets in memory.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[domain.AssetID]models.Asset
}

func NewAssetStore() *AssetStore {
	return &AssetStore{assets: make(map[domain.AssetID]models.Asset)}
}

func (s *AssetStore) Save(_ context.Context, a models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = a
	return nil
}

func (s *AssetStore) Retrieve(_ context.Context, id domain.AssetID) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *AssetStore) FindByExternalIDAndAssetTypeID(_ context.Context, externalID string, assetTypeID domain.AssetTypeID) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assets {
		if a.ExternalID == externalID && a.AssetTypeID == assetTypeID {
			found := a
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *AssetStore) Delete(_ context.Context, id domain.AssetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.assets, id)
	return nil
}

// AssetTypeStore keeps asset types in memory.
type AssetTypeStore struct {
	mu    sync.RWMutex
	types map[domain.AssetTypeID]models.AssetType
}

func NewAssetTypeStore() *AssetTypeStore {
	return &AssetTypeStore{types: make(map[domain.AssetTypeID]models.AssetType)}
}

func (s *AssetTypeStore) Save(_ context.Context, at models.AssetType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[at.ID] = at
	return nil
}

func (s *AssetTypeStore) Retrieve(_ context.Context, id domain.AssetTypeID) (*models.AssetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.types[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &at, nil
}

func (s *AssetTypeStore) FindByName(_ context.Context, name string) (*models.AssetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, at := range s.types {
		if at.Name == name {
			found := at
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *AssetTypeStore) List(_ context.Context) ([]models.AssetType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AssetType, 0, len(s.types))
	for _, at := range s.types {
		out = append(out, at)
	}
	return out, nil
}

func (s *AssetTypeStore) Delete(_ context.Context, id domain.AssetTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.types[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.types, id)
	return nil
}
