package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testClock returns strictly increasing times
type testClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newTestClock() *testClock {
	return &testClock{cur: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type testEnv struct {
	store         *memory.Store
	notifications *NotificationService
	catalog       *CatalogService
	orders        *OrderService
	ratings       *RatingService
	payments      *PaymentService
	events        *EventService
	publisher     *fakePublisher

	customer models.Principal
	vendor   models.Principal
	supplier models.Principal
}

type fakePublisher struct {
	mu        sync.Mutex
	published []models.OrderEvent
	err       error
	// onPublish runs before events are accepted
	onPublish func()
}

func (fp *fakePublisher) Publish(_ context.Context, events []models.OrderEvent) error {
	if fp.onPublish != nil {
		fp.onPublish()
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.err != nil {
		return fp.err
	}
	fp.published = append(fp.published, events...)
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	clock := newTestClock()
	opts := []Option{WithClock(clock.Now)}

	money, err := NewMoneyFormatter("INR")
	require.NoError(t, err)

	notifications := NewNotificationService(store, opts...)
	catalog := NewCatalogService(store, store, notifications, nil, opts...)
	publisher := &fakePublisher{}

	env := &testEnv{
		store:         store,
		notifications: notifications,
		catalog:       catalog,
		orders:        NewOrderService(store, store, catalog, store, store, notifications, money, nil, opts...),
		ratings:       NewRatingService(store, store, store, store, store, notifications, nil, opts...),
		payments:      NewPaymentService(store, store, store, notifications, money, nil, opts...),
		events:        NewEventService(store, publisher, nil, opts...),
		publisher:     publisher,
	}

	env.customer = env.addActor(t, "c-1", "customer", models.RoleCustomer)
	env.vendor = env.addActor(t, "v-1", "vendor", models.RoleVendor)
	env.supplier = env.addActor(t, "s-1", "supplier", models.RoleSupplier)

	return env
}

func (env *testEnv) addActor(t *testing.T, id, login string, role models.Role) models.Principal {
	t.Helper()

	actor := models.Actor{ID: id, Login: login, Role: role, IsActive: true, Rating: decimal.Zero}
	require.NoError(t, env.store.CreateActor(context.Background(), &actor))
	return actor.Principal()
}

func (env *testEnv) addItem(t *testing.T, owner models.Principal, name, price string, stock int) *models.CatalogItem {
	t.Helper()

	item, err := env.catalog.CreateItem(context.Background(), owner, CatalogItemInput{
		Name:             name,
		Unit:             "kg",
		Price:            decimal.RequireFromString(price),
		Stock:            stock,
		MinOrderQuantity: 1,
	})
	require.NoError(t, err)
	return item
}

func (env *testEnv) stock(t *testing.T, id string) int {
	t.Helper()

	item, err := env.store.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item.Stock
}

func (env *testEnv) submit(t *testing.T, requester models.Principal, lines ...models.OrderLine) *models.Order {
	t.Helper()

	order, err := env.orders.Submit(context.Background(), requester, SubmitRequest{
		Items:    lines,
		Delivery: models.DeliveryInfo{Address: "12 Market Road", Phone: "+91 98765 43210"},
	})
	require.NoError(t, err)
	return order
}

func (env *testEnv) advance(t *testing.T, order *models.Order, actor models.Principal, statuses ...models.OrderStatus) {
	t.Helper()

	for _, status := range statuses {
		_, err := env.orders.Transition(context.Background(), actor, order.ID, status)
		require.NoError(t, err)
	}
}

func line(item *models.CatalogItem, qty int) models.OrderLine {
	return models.OrderLine{CatalogItemID: item.ID, Quantity: qty}
}

func intPtr(v int) *int {
	return &v
}
