package memory

import (
	"context"
	"slices"
	"time"

	"github.com/rookgm/streetmart/internal/models"
)

// AppendEvent stores event and sets its id
func (s *Store) AppendEvent(ctx context.Context, e *models.OrderEvent) error {
	defer s.lock(ctx)()

	if _, ok := s.orders[e.OrderID]; !ok {
		return models.ErrDataNotFound
	}

	s.eventSeq++
	e.ID = s.eventSeq
	if len(e.Payload) == 0 {
		e.Payload = []byte("{}")
	}

	stored := *e
	stored.Payload = slices.Clone(e.Payload)
	s.events = append(s.events, stored)
	return nil
}

// ListEventsByOrder returns order events oldest first
func (s *Store) ListEventsByOrder(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	defer s.lock(ctx)()

	list := []models.OrderEvent{}
	for _, e := range s.events {
		if e.OrderID == orderID {
			list = append(list, e)
		}
	}
	return list, nil
}

// FetchUnpublished returns up to limit unpublished events oldest first
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]models.OrderEvent, error) {
	defer s.lock(ctx)()

	if limit <= 0 {
		limit = defaultLimit
	}

	list := []models.OrderEvent{}
	for _, e := range s.events {
		if e.PublishedAt != nil {
			continue
		}
		list = append(list, e)
		if len(list) == limit {
			break
		}
	}
	return list, nil
}

// MarkPublished sets publish time of events
func (s *Store) MarkPublished(ctx context.Context, ids []int64, at time.Time) error {
	defer s.lock(ctx)()

	for i := range s.events {
		if slices.Contains(ids, s.events[i].ID) {
			published := at
			s.events[i].PublishedAt = &published
		}
	}
	return nil
}
