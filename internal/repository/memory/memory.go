// Package memory is in-process store implementing the same repository contracts as postgres.
// It is used when no database DSN is configured and in service tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/rookgm/streetmart/internal/models"
)

type txKey struct{}

const defaultLimit = 50

// Store keeps all entities in maps guarded by one mutex
type Store struct {
	mu sync.Mutex

	actors        map[string]models.Actor
	items         map[string]models.CatalogItem
	orders        map[string]models.Order
	ratings       map[string]models.Rating
	notifications map[string]models.Notification
	payments      map[string]models.Payment
	events        []models.OrderEvent
	eventSeq      int64
}

// New creates empty Store
func New() *Store {
	return &Store{
		actors:        make(map[string]models.Actor),
		items:         make(map[string]models.CatalogItem),
		orders:        make(map[string]models.Order),
		ratings:       make(map[string]models.Rating),
		notifications: make(map[string]models.Notification),
		payments:      make(map[string]models.Payment),
	}
}

// lock acquires store mutex unless ctx already runs inside WithinTx
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	actors        map[string]models.Actor
	items         map[string]models.CatalogItem
	orders        map[string]models.Order
	ratings       map[string]models.Rating
	notifications map[string]models.Notification
	payments      map[string]models.Payment
	events        []models.OrderEvent
	eventSeq      int64
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		actors:        maps.Clone(s.actors),
		items:         maps.Clone(s.items),
		orders:        maps.Clone(s.orders),
		ratings:       maps.Clone(s.ratings),
		notifications: maps.Clone(s.notifications),
		payments:      maps.Clone(s.payments),
		events:        slices.Clone(s.events),
		eventSeq:      s.eventSeq,
	}
}

func (s *Store) restore(snap snapshot) {
	s.actors = snap.actors
	s.items = snap.items
	s.orders = snap.orders
	s.ratings = snap.ratings
	s.notifications = snap.notifications
	s.payments = snap.payments
	s.events = snap.events
	s.eventSeq = snap.eventSeq
}

// WithinTx runs fn holding the store lock. All changes made by fn are rolled back if it fails.
// Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error {
	return nil
}

func window[T any](list []T, limit, offset int) []T {
	if limit <= 0 || limit > 200 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	end := min(offset+limit, len(list))
	return list[offset:end]
}
