package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	handler "github.com/rookgm/streetmart/internal/handler/http"
	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/middleware"
	"go.uber.org/zap"
)

// NewRouter creates router serving marketplace API, health and metrics
func NewRouter(svc *Services, tokens handler.TokenService, pinger handler.Pinger,
	m *metrics.Metrics, gatherer prometheus.Gatherer, log *zap.Logger) http.Handler {
	userHandler := handler.NewUserHandler(svc.Actors, svc.Ratings)
	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	orderHandler := handler.NewOrderHandler(svc.Orders)
	ratingHandler := handler.NewRatingHandler(svc.Ratings)
	paymentHandler := handler.NewPaymentHandler(svc.Payments)
	notificationHandler := handler.NewNotificationHandler(svc.Notifications)

	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Metrics(m))

	router.Get("/healthz", handler.Healthz(pinger))
	if gatherer != nil {
		router.Handle("/metrics", metrics.Handler(gatherer))
	}

	router.Post("/api/user/register", userHandler.RegisterUser())
	router.Post("/api/user/login", userHandler.LoginUser())

	router.Get("/api/actors", userHandler.ListActors())
	router.Get("/api/actors/{actorID}", userHandler.PublicProfile())
	router.Get("/api/actors/{actorID}/ratings", userHandler.ActorRatings())

	router.Get("/api/catalog", catalogHandler.ListCatalog())
	router.Get("/api/catalog/{itemID}", catalogHandler.GetCatalogItem())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(tokens))

		group.Get("/api/user/profile", userHandler.Profile())
		group.Put("/api/user/profile", userHandler.UpdateProfile())

		group.Get("/api/catalog/mine", catalogHandler.ListOwnCatalog())
		group.Post("/api/catalog", catalogHandler.CreateCatalogItem())
		group.Put("/api/catalog/{itemID}/stock", catalogHandler.SetStock())
		group.Put("/api/catalog/{itemID}/price", catalogHandler.SetPrice())
		group.Put("/api/catalog/{itemID}/availability", catalogHandler.SetAvailability())

		group.Post("/api/orders", orderHandler.SubmitOrder())
		group.Post("/api/orders/voice", orderHandler.SubmitVoiceOrder())
		group.Get("/api/orders", orderHandler.ListOrders())
		group.Get("/api/orders/{orderID}", orderHandler.GetOrder())
		group.Post("/api/orders/{orderID}/transition", orderHandler.TransitionOrder())
		group.Get("/api/orders/{orderID}/events", orderHandler.OrderEvents())
		group.Post("/api/orders/{orderID}/rating", ratingHandler.RateOrder())
		group.Get("/api/orders/{orderID}/rating", ratingHandler.OrderRating())
		group.Post("/api/orders/{orderID}/payments", paymentHandler.RecordPayment())
		group.Get("/api/orders/{orderID}/payments", paymentHandler.ListPayments())
		group.Put("/api/payments/{paymentID}/status", paymentHandler.SetPaymentStatus())

		group.Get("/api/notifications", notificationHandler.ListNotifications())
		group.Get("/api/notifications/unread-count", notificationHandler.UnreadCount())
		group.Post("/api/notifications/read-all", notificationHandler.MarkAllRead())
		group.Post("/api/notifications/{notificationID}/read", notificationHandler.MarkRead())
		group.Delete("/api/notifications/{notificationID}", notificationHandler.DeleteNotification())
	})

	return router
}
