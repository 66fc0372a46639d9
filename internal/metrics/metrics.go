// Package metrics holds prometheus collectors of the marketplace.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rookgm/streetmart/internal/models"
)

const namespace = "streetmart"

// Metrics is set of marketplace collectors. A nil *Metrics records nothing.
type Metrics struct {
	ordersSubmitted  *prometheus.CounterVec
	orderTransitions *prometheus.CounterVec
	stockRejections  prometheus.Counter
	lowStockAlerts   prometheus.Counter
	ratings          prometheus.Counter
	payments         *prometheus.CounterVec
	eventsPublished  prometheus.Counter
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New creates collectors and registers them in reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ordersSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Number of submitted orders.",
		}, []string{"source"}),
		orderTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Number of applied order status transitions.",
		}, []string{"to"}),
		stockRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_accept_insufficient_stock_total",
			Help:      "Number of acceptances rejected for insufficient stock.",
		}),
		lowStockAlerts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_low_stock_alerts_total",
			Help:      "Number of low stock notifications emitted.",
		}),
		ratings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_recorded_total",
			Help:      "Number of recorded ratings.",
		}),
		payments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Number of recorded payments.",
		}, []string{"method", "status"}),
		eventsPublished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_published_total",
			Help:      "Number of order events relayed to broker.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of served HTTP requests.",
		}, []string{"method", "route", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// OrderSubmitted counts submitted order
func (m *Metrics) OrderSubmitted(voice bool) {
	if m == nil {
		return
	}
	source := "catalog"
	if voice {
		source = "voice"
	}
	m.ordersSubmitted.WithLabelValues(source).Inc()
}

// OrderTransitioned counts applied transition
func (m *Metrics) OrderTransitioned(to models.OrderStatus) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(string(to)).Inc()
}

// StockRejected counts acceptance failed for insufficient stock
func (m *Metrics) StockRejected() {
	if m == nil {
		return
	}
	m.stockRejections.Inc()
}

// LowStock counts low stock alert
func (m *Metrics) LowStock() {
	if m == nil {
		return
	}
	m.lowStockAlerts.Inc()
}

// RatingRecorded counts recorded rating
func (m *Metrics) RatingRecorded() {
	if m == nil {
		return
	}
	m.ratings.Inc()
}

// PaymentRecorded counts recorded payment
func (m *Metrics) PaymentRecorded(method models.PaymentMethod, status models.PaymentStatus) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(string(method), string(status)).Inc()
}

// EventsPublished counts relayed events
func (m *Metrics) EventsPublished(n int) {
	if m == nil {
		return
	}
	m.eventsPublished.Add(float64(n))
}

// ObserveRequest records served request
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns HTTP handler exposing metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
