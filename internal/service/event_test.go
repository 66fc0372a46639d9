package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_RelayPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	onions := env.addItem(t, env.supplier, "Onions", "35", 10)
	order := env.submit(t, env.customer, line(onions, 2))
	env.advance(t, order, env.supplier, models.OrderStatusConfirmed)

	env.publisher.err = errors.New("broker down")
	_, err := env.events.RelayPending(ctx)
	require.Error(t, err)

	pending, err := env.store.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	env.publisher.err = nil
	n, err := env.events.RelayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, env.publisher.published, 2)
	assert.Equal(t, models.EventOrderSubmitted, env.publisher.published[0].Type)
	assert.Equal(t, models.OrderStatusConfirmed, env.publisher.published[1].ToStatus)

	var payload struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
		Items    int    `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.publisher.published[0].Payload, &payload))
	assert.Equal(t, "70.00", payload.Total)
	assert.Equal(t, "INR", payload.Currency)
	assert.Equal(t, 1, payload.Items)

	n, err = env.events.RelayPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEventService_RelayPendingReleasesStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	onions := env.addItem(t, env.supplier, "Onions", "35", 10)
	env.submit(t, env.customer, line(onions, 2))

	// store must stay usable by other requests while broker is slow
	storeFree := false
	env.publisher.onPublish = func() {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = env.store.CountUnread(context.Background(), env.supplier.ActorID)
		}()
		select {
		case <-done:
			storeFree = true
		case <-time.After(time.Second):
		}
	}

	n, err := env.events.RelayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, storeFree)
}
