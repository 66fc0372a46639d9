package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/rookgm/streetmart/internal/models"
)

func copyOrder(o models.Order) *models.Order {
	o.Items = slices.Clone(o.Items)
	if o.FulfillerID != nil {
		id := *o.FulfillerID
		o.FulfillerID = &id
	}
	return &o
}

// CreateOrder stores new order, ErrConflictData on repeated idempotency key
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	defer s.lock(ctx)()

	if _, ok := s.orders[order.ID]; ok {
		return models.ErrConflictData
	}
	if _, ok := s.actors[order.RequesterID]; !ok {
		return models.ErrDataNotFound
	}
	if order.IdempotencyKey != "" {
		for _, o := range s.orders {
			if o.RequesterID == order.RequesterID && o.IdempotencyKey == order.IdempotencyKey {
				return models.ErrConflictData
			}
		}
	}

	s.orders[order.ID] = *copyOrder(*order)
	return nil
}

// GetOrder returns order by id
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	defer s.lock(ctx)()

	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return copyOrder(o), nil
}

// GetOrderByIdempotencyKey returns order submitted by requester with key
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, requesterID, key string) (*models.Order, error) {
	defer s.lock(ctx)()

	for _, o := range s.orders {
		if o.RequesterID == requesterID && o.IdempotencyKey == key {
			return copyOrder(o), nil
		}
	}
	return nil, models.ErrDataNotFound
}

// ListOrders returns orders matching filter, newest first
func (s *Store) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	defer s.lock(ctx)()

	orders := []models.Order{}
	for _, o := range s.orders {
		if filter.RequesterID != "" && o.RequesterID != filter.RequesterID {
			continue
		}
		if filter.FulfillerID != "" && !o.IsFulfiller(filter.FulfillerID) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		orders = append(orders, *copyOrder(o))
	}

	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})

	return window(orders, filter.Limit, filter.Offset), nil
}

// UpdateOrderStatus moves order from status to status.
// Returns ErrConflictData if order is no longer in from.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error {
	defer s.lock(ctx)()

	o, ok := s.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}
	if o.Status != from {
		return models.ErrConflictData
	}

	o.Status = to
	o.UpdatedAt = at
	s.orders[id] = o
	return nil
}
