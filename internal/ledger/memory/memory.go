package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Store keeps tab payloads in memory, keyed exactly like the persistent
// stores. It is the default backend for local runs and the fixture for tests.
type Store struct {
	mu    sync.RWMutex
	items map[string]string
}

func New(items map[string]string) *Store {
	s := &Store{items: make(map[string]string, len(items))}
	for k, v := range items {
		s.items[k] = v
	}
	return s
}

// NewFromFile seeds a store from a JSON object whose values are either tab
// payload strings or record arrays. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	items := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			items[k] = s
			continue
		}
		items[k] = string(v)
	}
	return New(items), nil
}

// Get implements ledger.Store.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

// Put implements ledger.Writer.
func (s *Store) Put(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.items[key]; ok && old == value {
		return false, nil
	}
	s.items[key] = value
	return true, nil
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	delete(s.items, key)
	return ok, nil
}

// Keys implements ledger.Lister.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// PutRecords marshals records and stores them under key.
func (s *Store) PutRecords(key string, records any) error {
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records for %s: %w", key, err)
	}
	_, err = s.Put(context.Background(), key, string(b))
	return err
}
