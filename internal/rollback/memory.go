package rollback

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implementa Store en memoria (single-node). Las entradas
// vencidas quedan hasta que el sweep o un Consume las retire.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryStore crea el store en memoria.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	s.entries[e.Token] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Consume(ctx context.Context, token string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.entries, token)
	return e, nil
}

func (s *MemoryStore) SweepExpired(ctx context.Context, fn func(context.Context, *Entry)) (int, error) {
	now := s.now()

	// Recolectar bajo lock, ejecutar compensaciones fuera de él.
	s.mu.Lock()
	var expired []*Entry
	for token, e := range s.entries {
		if e.Expired(now) {
			expired = append(expired, e)
			delete(s.entries, token)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		if fn != nil {
			fn(ctx, e)
		}
	}
	return len(expired), nil
}

// Len retorna la cantidad de entradas pendientes (solo tests).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// SetNow reemplaza el reloj (solo tests).
func (s *MemoryStore) SetNow(fn func() time.Time) { s.now = fn }
