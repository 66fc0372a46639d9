package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/phedde/luhn-algorithm"
	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/models"
)

// PaymentService records payment outcomes reported by the gateway
type PaymentService struct {
	base
	tx       Transactor
	payments PaymentRepository
	orders   OrderRepository
	notifier Notifier
	money    *MoneyFormatter
	metrics  *metrics.Metrics
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(tx Transactor, payments PaymentRepository, orders OrderRepository, notifier Notifier,
	money *MoneyFormatter, m *metrics.Metrics, opts ...Option) *PaymentService {
	return &PaymentService{
		base:     newBase(opts),
		tx:       tx,
		payments: payments,
		orders:   orders,
		notifier: notifier,
		money:    money,
		metrics:  m,
	}
}

// cardLastFour validates card number and returns its last four digits
func cardLastFour(number string) (string, error) {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(digits) < 12 || len(digits) > 19 {
		return "", models.NewValidationError("card_number", "must have 12 to 19 digits")
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", models.NewValidationError("card_number", "must contain digits only")
		}
	}

	num, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", models.NewValidationError("card_number", "is out of supported range")
	}

	// check card number using Luhn algorithm
	if ok := luhn.IsValid(num); !ok {
		return "", models.NewValidationError("card_number", "checksum mismatch")
	}

	return digits[len(digits)-4:], nil
}

// Record stores payment of order made by its requester
func (ps *PaymentService) Record(ctx context.Context, p models.Principal, orderID string, in models.PaymentInput) (*models.Payment, error) {
	if !in.Method.Valid() {
		return nil, models.NewValidationError("method", "must be wallet, card, upi or cash")
	}

	status := in.Status
	if status == "" {
		status = models.PaymentPending
	}
	if !status.Valid() {
		return nil, models.NewValidationError("status", "unknown payment status")
	}

	var lastFour string
	switch {
	case in.Method == models.PaymentCard:
		var err error
		if lastFour, err = cardLastFour(in.CardNumber); err != nil {
			return nil, err
		}
	case in.CardNumber != "":
		return nil, models.NewValidationError("card_number", "only allowed for card payments")
	}

	var payment *models.Payment
	err := ps.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := ps.orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsParty(p.ActorID) {
			return models.ErrDataNotFound
		}
		if order.RequesterID != p.ActorID {
			return models.NewAuthorizationError("pay order")
		}
		if order.Status == models.OrderStatusCancelled {
			return models.NewValidationError("order", "cancelled orders can not be paid")
		}

		now := ps.now()
		payment = &models.Payment{
			ID:            ps.newID(),
			OrderID:       order.ID,
			PayerID:       p.ActorID,
			Method:        in.Method,
			Amount:        order.Total,
			Status:        status,
			TransactionID: strings.TrimSpace(in.TransactionID),
			CardLastFour:  lastFour,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := ps.payments.CreatePayment(ctx, payment); err != nil {
			return err
		}

		return ps.notify(ctx, order, payment)
	})
	if err != nil {
		return nil, err
	}

	ps.metrics.PaymentRecorded(payment.Method, payment.Status)
	return payment, nil
}

// SetStatus moves payment status on behalf of an order party
func (ps *PaymentService) SetStatus(ctx context.Context, p models.Principal, paymentID string, status models.PaymentStatus) (*models.Payment, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status", "unknown payment status")
	}

	var payment *models.Payment
	err := ps.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := ps.payments.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		order, err := ps.orders.GetOrder(ctx, cur.OrderID)
		if err != nil {
			return err
		}
		if !order.IsParty(p.ActorID) {
			return models.ErrDataNotFound
		}
		if !cur.Status.CanTransitionTo(status) {
			return models.NewValidationError("status", fmt.Sprintf("payment can not move from %s to %s", cur.Status, status))
		}

		now := ps.now()
		if err := ps.payments.UpdatePaymentStatus(ctx, cur.ID, cur.Status, status, now); err != nil {
			return err
		}
		cur.Status = status
		cur.UpdatedAt = now
		payment = cur

		return ps.notify(ctx, order, payment)
	})
	if err != nil {
		return nil, err
	}

	ps.metrics.PaymentRecorded(payment.Method, payment.Status)
	return payment, nil
}

// ListForOrder returns payments of order visible to principal
func (ps *PaymentService) ListForOrder(ctx context.Context, p models.Principal, orderID string) ([]models.Payment, error) {
	order, err := ps.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(p.ActorID) {
		return nil, models.ErrDataNotFound
	}
	return ps.payments.ListPaymentsByOrder(ctx, orderID)
}

func (ps *PaymentService) notify(ctx context.Context, order *models.Order, payment *models.Payment) error {
	priority := models.PriorityMedium
	if payment.Status == models.PaymentFailed {
		priority = models.PriorityHigh
	}

	_, err := ps.notifier.Emit(ctx, models.NotificationInput{
		RecipientID: order.RequesterID,
		Category:    models.CategoryPayment,
		Topic:       models.TopicPaymentRecorded,
		Priority:    priority,
		Title:       "Payment " + string(payment.Status),
		Message: fmt.Sprintf("Payment of %s for order %s via %s is %s",
			ps.money.Format(payment.Amount), shortID(order.ID), payment.Method, payment.Status),
		ActionRequired: payment.Status == models.PaymentFailed,
		OrderID:        &order.ID,
	})
	return err
}
