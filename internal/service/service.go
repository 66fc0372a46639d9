// Package service implements marketplace business rules on top of repositories.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rookgm/streetmart/internal/service"

// Transactor runs fn in one store transaction
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ActorRepository is interface for interacting with actor-related data
type ActorRepository interface {
	// CreateActor inserts new actor
	CreateActor(ctx context.Context, actor *models.Actor) error
	// GetActorByID returns actor by id
	GetActorByID(ctx context.Context, id string) (*models.Actor, error)
	// GetActorByLogin returns actor by login
	GetActorByLogin(ctx context.Context, login string) (*models.Actor, error)
	// LockActor locks actor row until transaction ends
	LockActor(ctx context.Context, id string) error
	// UpdateActorRating stores aggregate rating
	UpdateActorRating(ctx context.Context, id string, mean decimal.Decimal, count int, at time.Time) error
	// ListActors returns active actors best rated first
	ListActors(ctx context.Context, filter models.ActorFilter) ([]models.Actor, error)
	// UpdateActorProfile replaces editable profile fields
	UpdateActorProfile(ctx context.Context, id string, upd models.ProfileUpdate, at time.Time) (*models.Actor, error)
}

// CatalogRepository is interface for interacting with catalog-related data
type CatalogRepository interface {
	CreateItem(ctx context.Context, item *models.CatalogItem) error
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
	ListItems(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, error)
	// DecrementStock subtracts quantity in one conditional write, InsufficientStockError if stock is short
	DecrementStock(ctx context.Context, id string, quantity int, at time.Time) (*models.CatalogItem, error)
	UpdateStock(ctx context.Context, id string, stock int, at time.Time) (*models.CatalogItem, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal, at time.Time) (*models.CatalogItem, error)
	UpdateDisabled(ctx context.Context, id string, disabled bool, at time.Time) (*models.CatalogItem, error)
}

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, requesterID, key string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// UpdateOrderStatus is compare-and-set on current status, ErrConflictData if order moved meanwhile
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error
}

// RatingRepository is interface for interacting with rating-related data
type RatingRepository interface {
	CreateRating(ctx context.Context, rating *models.Rating) error
	GetRatingByOrderAndRater(ctx context.Context, orderID, raterID string) (*models.Rating, error)
	ListRatingsByTarget(ctx context.Context, targetID string, limit, offset int) ([]models.Rating, error)
	RatingStats(ctx context.Context, targetID string) (models.RatingStats, error)
}

// NotificationRepository is interface for interacting with notification-related data
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID string, filter models.NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	DeleteNotification(ctx context.Context, recipientID, id string) error
	CountUnread(ctx context.Context, recipientID string) (int, error)
}

// PaymentRepository is interface for interacting with payment-related data
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID string) ([]models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, from, to models.PaymentStatus, at time.Time) error
}

// EventRepository is interface for interacting with order event outbox
type EventRepository interface {
	AppendEvent(ctx context.Context, e *models.OrderEvent) error
	ListEventsByOrder(ctx context.Context, orderID string) ([]models.OrderEvent, error)
	FetchUnpublished(ctx context.Context, limit int) ([]models.OrderEvent, error)
	MarkPublished(ctx context.Context, ids []int64, at time.Time) error
}

// Notifier creates user-facing notifications
type Notifier interface {
	Emit(ctx context.Context, in models.NotificationInput) (*models.Notification, error)
}

// Option configures service clock and id source
type Option func(*base)

// WithClock overrides time source
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

// WithIDGenerator overrides id source
func WithIDGenerator(newID func() string) Option {
	return func(b *base) {
		b.newID = newID
	}
}

type base struct {
	now    func() time.Time
	newID  func() string
	tracer trace.Tracer
}

func newBase(opts []Option) base {
	b := base{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// endSpan records err on span and ends it
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
