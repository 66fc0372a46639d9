package handler

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

import (
	"context"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/shopspring/decimal"
)

// ActorService is interface for actor registration and profiles
type ActorService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*models.Actor, string, error)
	Login(ctx context.Context, login, password string) (string, error)
	Profile(ctx context.Context, p models.Principal) (*models.Actor, error)
	PublicProfile(ctx context.Context, id string) (*models.Actor, error)
	ListActors(ctx context.Context, filter models.ActorFilter) ([]models.Actor, error)
	UpdateProfile(ctx context.Context, p models.Principal, upd models.ProfileUpdate) (*models.Actor, error)
}

// CatalogService is interface for catalog operations
type CatalogService interface {
	CreateItem(ctx context.Context, p models.Principal, in service.CatalogItemInput) (*models.CatalogItem, error)
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
	ListAvailable(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, error)
	ListOwned(ctx context.Context, p models.Principal, filter models.CatalogFilter) ([]models.CatalogItem, error)
	SetStock(ctx context.Context, p models.Principal, id string, stock int) (*models.CatalogItem, error)
	SetPrice(ctx context.Context, p models.Principal, id string, price decimal.Decimal) (*models.CatalogItem, error)
	SetAvailability(ctx context.Context, p models.Principal, id string, available bool) (*models.CatalogItem, error)
}

// OrderService is interface for order lifecycle operations
type OrderService interface {
	Submit(ctx context.Context, p models.Principal, req service.SubmitRequest) (*models.Order, error)
	SubmitVoice(ctx context.Context, p models.Principal, req service.VoiceSubmitRequest) (*models.Order, error)
	Transition(ctx context.Context, p models.Principal, orderID string, target models.OrderStatus) (*models.Order, error)
	Get(ctx context.Context, p models.Principal, orderID string) (*models.Order, error)
	List(ctx context.Context, p models.Principal, req service.ListRequest) ([]models.Order, error)
	History(ctx context.Context, p models.Principal, orderID string) ([]models.OrderEvent, error)
}

// RatingService is interface for rating operations
type RatingService interface {
	Submit(ctx context.Context, p models.Principal, orderID string, req service.RatingRequest) (*models.Rating, error)
	ListForTarget(ctx context.Context, targetID string, limit, offset int) ([]models.Rating, error)
	GetForOrder(ctx context.Context, p models.Principal, orderID string) (*models.Rating, error)
}

// PaymentService is interface for payment records
type PaymentService interface {
	Record(ctx context.Context, p models.Principal, orderID string, in models.PaymentInput) (*models.Payment, error)
	SetStatus(ctx context.Context, p models.Principal, paymentID string, status models.PaymentStatus) (*models.Payment, error)
	ListForOrder(ctx context.Context, p models.Principal, orderID string) ([]models.Payment, error)
}

// NotificationService is interface for inbox operations
type NotificationService interface {
	List(ctx context.Context, p models.Principal, filter models.NotificationFilter) ([]models.Notification, error)
	UnreadCount(ctx context.Context, p models.Principal) (int, error)
	MarkRead(ctx context.Context, p models.Principal, id string) error
	MarkAllRead(ctx context.Context, p models.Principal) (int, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}
