// Package app wires stores, services and HTTP routes of the marketplace.
package app

import (
	"context"
	"fmt"

	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/repository"
	"github.com/rookgm/streetmart/internal/repository/memory"
	"github.com/rookgm/streetmart/internal/repository/postgres"
	"github.com/rookgm/streetmart/internal/service"
)

// Stores is set of repositories backed by one store
type Stores struct {
	Tx            service.Transactor
	Actors        service.ActorRepository
	Catalog       service.CatalogRepository
	Orders        service.OrderRepository
	Ratings       service.RatingRepository
	Notifications service.NotificationRepository
	Payments      service.PaymentRepository
	Events        service.EventRepository

	ping  func(ctx context.Context) error
	close func()
}

// NewMemoryStores returns stores kept in process memory
func NewMemoryStores() *Stores {
	s := memory.New()
	return &Stores{
		Tx:            s,
		Actors:        s,
		Catalog:       s,
		Orders:        s,
		Ratings:       s,
		Notifications: s,
		Payments:      s,
		Events:        s,
		ping:          s.Ping,
		close:         func() {},
	}
}

// OpenPostgres connects to database, applies migrations and returns stores on it
func OpenPostgres(ctx context.Context, dsn string) (*Stores, error) {
	db, err := postgres.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Stores{
		Tx:            db,
		Actors:        repository.NewActorRepository(db),
		Catalog:       repository.NewCatalogRepository(db),
		Orders:        repository.NewOrderRepository(db),
		Ratings:       repository.NewRatingRepository(db),
		Notifications: repository.NewNotificationRepository(db),
		Payments:      repository.NewPaymentRepository(db),
		Events:        repository.NewEventRepository(db),
		ping:          db.Ping,
		close:         db.Close,
	}, nil
}

// OpenStores opens postgres stores, or memory stores when dsn is empty
func OpenStores(ctx context.Context, dsn string) (*Stores, error) {
	if dsn == "" {
		return NewMemoryStores(), nil
	}
	return OpenPostgres(ctx, dsn)
}

// Ping checks store reachability
func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases store connections
func (s *Stores) Close() {
	s.close()
}

// Services is set of marketplace services
type Services struct {
	Actors        *service.ActorService
	Catalog       *service.CatalogService
	Orders        *service.OrderService
	Ratings       *service.RatingService
	Payments      *service.PaymentService
	Notifications *service.NotificationService
	// Events is nil when no publisher is configured
	Events *service.EventService
}

// NewServices creates services on stores. publisher may be nil.
func NewServices(st *Stores, tokens service.TokenService, publisher service.Publisher,
	money *service.MoneyFormatter, m *metrics.Metrics, opts ...service.Option) *Services {
	notifications := service.NewNotificationService(st.Notifications, opts...)
	catalog := service.NewCatalogService(st.Tx, st.Catalog, notifications, m, opts...)

	svc := &Services{
		Actors:        service.NewActorService(st.Actors, tokens, opts...),
		Catalog:       catalog,
		Orders:        service.NewOrderService(st.Tx, st.Orders, catalog, st.Actors, st.Events, notifications, money, m, opts...),
		Ratings:       service.NewRatingService(st.Tx, st.Ratings, st.Orders, st.Actors, st.Events, notifications, m, opts...),
		Payments:      service.NewPaymentService(st.Tx, st.Payments, st.Orders, notifications, money, m, opts...),
		Notifications: notifications,
	}
	if publisher != nil {
		svc.Events = service.NewEventService(st.Events, publisher, m, opts...)
	}

	return svc
}
