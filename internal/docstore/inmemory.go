package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process document store for local/dev use and
// tests. Listing preserves creation order per collection.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]Fields
	order   map[string][]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]map[string]Fields),
		order:   make(map[string][]string),
	}
}

func (s *InMemoryStore) CreateRecord(_ context.Context, collection string, fields Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[collection] == nil {
		s.records[collection] = make(map[string]Fields)
	}
	id := uuid.NewString()
	s.records[collection][id] = fields
	s.order[collection] = append(s.order[collection], id)
	return id, nil
}

func (s *InMemoryStore) ListRecords(_ context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.order[collection]
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		fields, ok := s.records[collection][id]
		if !ok {
			continue
		}
		out = append(out, Record{ID: id, Fields: fields})
	}
	return out, nil
}

func (s *InMemoryStore) UpdateRecord(_ context.Context, collection, id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.records[collection][id]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		fields.Title = *patch.Title
	}
	if patch.Date != nil {
		fields.Date = *patch.Date
	}
	if patch.Status != nil {
		fields.Status = *patch.Status
	}
	s.records[collection][id] = fields
	return nil
}

func (s *InMemoryStore) DeleteRecord(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.records[collection], id)
	ids := s.order[collection]
	out := ids[:0]
	for _, existing := range ids {
		if existing == id {
			continue
		}
		out = append(out, existing)
	}
	s.order[collection] = out
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
