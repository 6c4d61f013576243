package codes

import (
  "context"
  "sync"
  "time"
)

// MemoryStore is a process-local Store for development and tests. Entries are
// never swept; the lookup path handles expiry.
type MemoryStore struct {
  mu      sync.Mutex
  entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
  return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(ctx context.Context, identity string) (Entry, bool, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  entry, ok := s.entries[identity]
  return entry, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, identity string, entry Entry, ttl time.Duration) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  s.entries[identity] = entry
  return nil
}

func (s *MemoryStore) Delete(ctx context.Context, identity string) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  delete(s.entries, identity)
  return nil
}
