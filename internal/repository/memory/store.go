// Package memory holds the in-process record stores that back every
// page. Nothing is persisted; each process starts from Seed.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
)

// Store is a mutex-guarded, insertion-ordered record store.
type Store[T model.Record] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	clone func(T) T
}

// NewStore returns a Store holding records. clone deep-copies a record
// on every read and write; nil means records are plain values.
func NewStore[T model.Record](clone func(T) T, records ...T) *Store[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	s := &Store[T]{
		items: make(map[string]T, len(records)),
		clone: clone,
	}
	for _, r := range records {
		s.put(r)
	}
	return s
}

var _ repository.Store[model.Case] = (*Store[model.Case])(nil)

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.clone(s.items[id]))
	}
	return out, nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return s.clone(r), nil
}

// Save inserts or replaces the record with the same id.
func (s *Store[T]) Save(ctx context.Context, record T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.RecordID() == "" {
		return fmt.Errorf("save record: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(record)
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store[T]) put(record T) {
	id := record.RecordID()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = s.clone(record)
}
