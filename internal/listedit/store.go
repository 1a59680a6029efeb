package listedit

import (
	"context"
	"log/slog"
	"sync"
)

// ListFunc reads the full collection.
type ListFunc[T any] func(ctx context.Context) ([]T, error)

// Store holds the last successfully loaded collection of one resource.
// Every load replaces the collection in full; a failed load keeps the old one.
type Store[T any] struct {
	name   string
	list   ListFunc[T]
	notify Notifier
	log    *slog.Logger

	mu      sync.Mutex
	items   []T
	loading bool
	loaded  bool
}

func NewStore[T any](name string, list ListFunc[T], n Notifier, log *slog.Logger) *Store[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Store[T]{name: name, list: list, notify: n, log: log}
}

// Load fetches the collection and returns the held items together with the
// loading flag, which is false once Load returns. A Load issued while another
// is in flight is ignored and reports loading=true.
func (s *Store[T]) Load(ctx context.Context) ([]T, bool) {
	items, loading, _ := s.Refresh(ctx)
	return items, loading
}

// Refresh is Load that also returns the load Failure, if any.
func (s *Store[T]) Refresh(ctx context.Context) ([]T, bool, error) {
	s.mu.Lock()
	if s.loading {
		items := s.snapshot()
		s.mu.Unlock()
		return items, true, nil
	}
	s.loading = true
	s.mu.Unlock()

	fetched, err := s.list(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Warn("load failed", "resource", s.name, "err", err)
		if s.notify != nil {
			s.notify.Notify(failure("Failed to load " + plural(s.name)))
		}
		return s.snapshot(), false, &Failure{Op: OpLoad, Resource: s.name, Err: err}
	}
	if fetched == nil {
		fetched = []T{}
	}
	s.items = fetched
	s.loaded = true
	return s.snapshot(), false, nil
}

// Items returns a copy of the held collection.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Loaded reports whether at least one load has succeeded.
func (s *Store[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Store[T]) snapshot() []T {
	if s.items == nil {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func plural(name string) string { return name + "s" }
