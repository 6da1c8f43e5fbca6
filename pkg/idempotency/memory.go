package idempotency

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	resp      Response
	expiresAt time.Time
}

// MemoryStore implementa Store en proceso. Sirve para STORE_DRIVER=memory y para tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore construye un store vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}
	resp := e.resp
	resp.Body = append([]byte(nil), e.resp.Body...)
	return &resp, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, resp *Response, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *resp
	stored.Body = append([]byte(nil), resp.Body...)
	s.entries[key] = memoryEntry{resp: stored, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, ok := s.locks[key]; ok && now.Before(until) {
		return nil, ErrInProgress
	}
	until := now.Add(ttl)
	s.locks[key] = until
	return func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Solo libera si el lock sigue siendo el propio (no expiró y fue retomado).
		if cur, ok := s.locks[key]; ok && cur.Equal(until) {
			delete(s.locks, key)
		}
		return nil
	}, nil
}
