// Package store provides a generic in-memory dao.Service implementation so
// that concrete stores do not rewrite identical Save/Load/Delete/List logic
// per entity type.
package store

import (
	"context"
	"sync"

	"github.com/kainat5008/Traffic-System-OS/service/dao"
)

// MemoryStore keeps entities of type *T mapped by a comparable key K
// obtained from the supplied keySelector. A matcher, when set, implements
// List filtering; without one List ignores parameters and returns
// everything.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
	matcher     func(*T, []*dao.Parameter) bool
}

// NewMemoryStore creates a new MemoryStore. keySelector extracts the entity
// key (usually the ID field) from a value.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// WithMatcher installs the List filter predicate and returns the store.
func (s *MemoryStore[K, T]) WithMatcher(matcher func(*T, []*dao.Parameter) bool) *MemoryStore[K, T] {
	s.matcher = matcher
	return s
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
	return nil
}

// Load returns a record by key, or (nil, nil) when absent.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns stored records matching the parameters.
func (s *MemoryStore[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		if s.matcher != nil && !s.matcher(v, parameters) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
