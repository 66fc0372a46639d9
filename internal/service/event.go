package service

import (
	"context"

	"github.com/rookgm/streetmart/internal/logger"
	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/models"
	"go.uber.org/zap"
)

const defaultRelayBatch = 100

// Publisher delivers order events to message broker
type Publisher interface {
	Publish(ctx context.Context, events []models.OrderEvent) error
}

// EventService relays order events from outbox to broker
type EventService struct {
	base
	events    EventRepository
	publisher Publisher
	metrics   *metrics.Metrics
	batch     int
}

// NewEventService creates new EventService instance
func NewEventService(events EventRepository, publisher Publisher, m *metrics.Metrics, opts ...Option) *EventService {
	return &EventService{
		base:      newBase(opts),
		events:    events,
		publisher: publisher,
		metrics:   m,
		batch:     defaultRelayBatch,
	}
}

// RelayPending publishes one batch of unpublished events and returns how many were relayed.
// Events stay unpublished if broker rejects the batch. Delivery is at least once.
func (es *EventService) RelayPending(ctx context.Context) (int, error) {
	pending, err := es.events.FetchUnpublished(ctx, es.batch)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	if err := es.publisher.Publish(ctx, pending); err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(pending))
	for _, e := range pending {
		ids = append(ids, e.ID)
	}
	if err := es.events.MarkPublished(ctx, ids, es.now()); err != nil {
		return 0, err
	}

	es.metrics.EventsPublished(len(pending))
	logger.Log.Debug("order events relayed", zap.Int("count", len(pending)))

	return len(pending), nil
}
