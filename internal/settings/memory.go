package settings

import (
	"context"
	"encoding/json"
	"sync"
)

// MemStore is an in-memory Store, used in tests.
type MemStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]string{}}
}

func (s *MemStore) Get(ctx context.Context, id string, out any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[id]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), out)
}

func (s *MemStore) Set(ctx context.Context, id string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[id] = string(raw)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

// MemSiteStore is an in-memory SiteStore, used in tests.
type MemSiteStore struct {
	mu    sync.Mutex
	sites []uint64
	data  map[uint64]map[string]string
}

func NewMemSiteStore(siteIDs ...uint64) *MemSiteStore {
	return &MemSiteStore{sites: siteIDs, data: map[uint64]map[string]string{}}
}

func (s *MemSiteStore) Get(ctx context.Context, siteID uint64, id string, out any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[siteID][id]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), out)
}

func (s *MemSiteStore) Set(ctx context.Context, siteID uint64, id string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.data[siteID] == nil {
		s.data[siteID] = map[string]string{}
	}
	s.data[siteID][id] = string(raw)
	s.mu.Unlock()
	return nil
}

func (s *MemSiteStore) Delete(ctx context.Context, siteID uint64, id string) error {
	s.mu.Lock()
	delete(s.data[siteID], id)
	s.mu.Unlock()
	return nil
}

func (s *MemSiteStore) SiteIDs(ctx context.Context) ([]uint64, error) {
	return s.sites, nil
}
