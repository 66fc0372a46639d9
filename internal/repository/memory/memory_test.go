package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*Store, models.CatalogItem) {
	t.Helper()

	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.CreateActor(ctx, &models.Actor{ID: "s1", Login: "supplier", Role: models.RoleSupplier, CreatedAt: now}))
	item := models.CatalogItem{
		ID:               "i1",
		OwnerID:          "s1",
		Name:             "Onions",
		Unit:             "kg",
		Price:            decimal.RequireFromString("35"),
		Stock:            10,
		MinOrderQuantity: 1,
		CreatedAt:        now,
	}
	require.NoError(t, s.CreateItem(ctx, &item))
	return s, item
}

func TestStore_DecrementStockConcurrent(t *testing.T) {
	s, item := seed(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		short     int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.DecrementStock(ctx, item.ID, 6, time.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, models.ErrInsufficientStock):
				short++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, short)

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestStore_DecrementStockReportsAvailable(t *testing.T) {
	s, item := seed(t)

	_, err := s.DecrementStock(context.Background(), item.ID, 11, time.Now())

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 11, stockErr.Requested)

	_, err = s.DecrementStock(context.Background(), "missing", 1, time.Now())
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	s, item := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.DecrementStock(ctx, item.ID, 3, time.Now()); err != nil {
			return err
		}
		// nested call joins the outer transaction instead of deadlocking
		return s.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := s.DecrementStock(ctx, item.ID, 3, time.Now()); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
}

func TestStore_ListItemsHidesUnavailable(t *testing.T) {
	s, item := seed(t)
	ctx := context.Background()

	_, err := s.UpdateStock(ctx, item.ID, 0, time.Now())
	require.NoError(t, err)

	items, err := s.ListItems(ctx, models.CatalogFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = s.ListItems(ctx, models.CatalogFilter{IncludeUnavailable: true})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = s.UpdateStock(ctx, item.ID, -1, time.Now())
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStore_OrderStatusCompareAndSet(t *testing.T) {
	s, _ := seed(t)
	ctx := context.Background()
	require.NoError(t, s.CreateActor(ctx, &models.Actor{ID: "c1", Login: "customer", Role: models.RoleCustomer}))

	order := models.Order{ID: "o1", RequesterID: "c1", Status: models.OrderStatusPending, IdempotencyKey: "k1"}
	require.NoError(t, s.CreateOrder(ctx, &order))

	dup := models.Order{ID: "o2", RequesterID: "c1", Status: models.OrderStatusPending, IdempotencyKey: "k1"}
	assert.ErrorIs(t, s.CreateOrder(ctx, &dup), models.ErrConflictData)

	require.NoError(t, s.UpdateOrderStatus(ctx, "o1", models.OrderStatusPending, models.OrderStatusConfirmed, time.Now()))
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, "o1", models.OrderStatusPending, models.OrderStatusCancelled, time.Now()),
		models.ErrConflictData)
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, "nope", models.OrderStatusPending, models.OrderStatusCancelled, time.Now()),
		models.ErrDataNotFound)

	got, err := s.GetOrderByIdempotencyKey(ctx, "c1", "k1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
}

func TestStore_Outbox(t *testing.T) {
	s, _ := seed(t)
	ctx := context.Background()
	require.NoError(t, s.CreateActor(ctx, &models.Actor{ID: "c1", Login: "customer", Role: models.RoleCustomer}))
	require.NoError(t, s.CreateOrder(ctx, &models.Order{ID: "o1", RequesterID: "c1", Status: models.OrderStatusPending}))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AppendEvent(ctx, &models.OrderEvent{OrderID: "o1", Type: models.EventOrderSubmitted}))
	}

	pending, err := s.FetchUnpublished(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)

	require.NoError(t, s.MarkPublished(ctx, []int64{pending[0].ID, pending[1].ID}, time.Now()))

	pending, err = s.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(3), pending[0].ID)
}

func TestStore_ListActorsByRating(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	for _, a := range []models.Actor{
		{ID: "s1", Login: "low", Role: models.RoleSupplier, Rating: decimal.RequireFromString("3.5"), IsActive: true, CreatedAt: now},
		{ID: "s2", Login: "high", Role: models.RoleSupplier, Rating: decimal.RequireFromString("4.5"), City: "Pune", IsActive: true, CreatedAt: now},
		{ID: "s3", Login: "gone", Role: models.RoleSupplier, Rating: decimal.RequireFromString("5"), IsActive: false, CreatedAt: now},
		{ID: "v1", Login: "vendor", Role: models.RoleVendor, IsActive: true, CreatedAt: now},
	} {
		require.NoError(t, s.CreateActor(ctx, &a))
	}

	list, err := s.ListActors(ctx, models.ActorFilter{Role: models.RoleSupplier})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, "s1", list[1].ID)

	list, err = s.ListActors(ctx, models.ActorFilter{City: "PUNE"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s2", list[0].ID)
}

func TestStore_UpdateActorProfile(t *testing.T) {
	s, _ := seed(t)
	ctx := context.Background()

	got, err := s.UpdateActorProfile(ctx, "s1", models.ProfileUpdate{DisplayName: "Fresh Farms", City: "Pune"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Fresh Farms", got.DisplayName)
	assert.Equal(t, "supplier", got.Login)

	stored, err := s.GetActorByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Pune", stored.City)

	_, err = s.UpdateActorProfile(ctx, "missing", models.ProfileUpdate{DisplayName: "x"}, time.Now())
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestStore_GetRatingByOrderAndRater(t *testing.T) {
	s, _ := seed(t)
	ctx := context.Background()
	require.NoError(t, s.CreateActor(ctx, &models.Actor{ID: "c1", Login: "customer", Role: models.RoleCustomer}))
	require.NoError(t, s.CreateRating(ctx, &models.Rating{ID: "r1", OrderID: "o1", RaterID: "c1", TargetID: "s1",
		Scores: models.Scores{Overall: 4}}))

	got, err := s.GetRatingByOrderAndRater(ctx, "o1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)

	_, err = s.GetRatingByOrderAndRater(ctx, "o1", "s1")
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}
