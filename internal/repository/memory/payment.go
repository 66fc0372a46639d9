package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rookgm/streetmart/internal/models"
)

// CreatePayment stores payment
func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	defer s.lock(ctx)()

	if _, ok := s.payments[p.ID]; ok {
		return models.ErrConflictData
	}
	if _, ok := s.orders[p.OrderID]; !ok {
		return models.ErrDataNotFound
	}
	s.payments[p.ID] = *p
	return nil
}

// GetPayment returns payment by id
func (s *Store) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	defer s.lock(ctx)()

	p, ok := s.payments[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return &p, nil
}

// ListPaymentsByOrder returns order payments newest first
func (s *Store) ListPaymentsByOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	defer s.lock(ctx)()

	list := []models.Payment{}
	for _, p := range s.payments {
		if p.OrderID == orderID {
			list = append(list, p)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})

	return list, nil
}

// UpdatePaymentStatus moves payment from status to status, ErrConflictData if it already moved
func (s *Store) UpdatePaymentStatus(ctx context.Context, id string, from, to models.PaymentStatus, at time.Time) error {
	defer s.lock(ctx)()

	p, ok := s.payments[id]
	if !ok {
		return models.ErrDataNotFound
	}
	if p.Status != from {
		return models.ErrConflictData
	}
	p.Status = to
	p.UpdatedAt = at
	s.payments[id] = p
	return nil
}
