package worker

import (
	"context"
	"time"

	"github.com/rookgm/streetmart/internal/logger"
	"go.uber.org/zap"
)

const defaultRelayInterval = 5 * time.Second

// EventRelayer relays one batch of pending order events
type EventRelayer interface {
	RelayPending(ctx context.Context) (int, error)
}

// OutboxRelay is worker publishing outbox events to broker
type OutboxRelay struct {
	svc      EventRelayer
	interval time.Duration
}

// NewOutboxRelay creates new outbox relay
func NewOutboxRelay(svc EventRelayer, interval time.Duration) *OutboxRelay {
	if interval <= 0 {
		interval = defaultRelayInterval
	}
	return &OutboxRelay{svc: svc, interval: interval}
}

// Run relays pending events on every tick until ctx is done.
// A full batch is followed by the next one at once.
func (or *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(or.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("outbox relay is done")
			return
		case <-ticker.C:
			or.drain(ctx)
		}
	}
}

func (or *OutboxRelay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := or.svc.RelayPending(ctx)
		if err != nil {
			logger.Log.Error("relay order events", zap.Error(err))
			return
		}
		if n == 0 {
			return
		}
	}
}
