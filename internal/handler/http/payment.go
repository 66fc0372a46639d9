package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
)

// PaymentHandler represents HTTP handler for payment-related requests
type PaymentHandler struct {
	svc PaymentService
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type paymentRequest struct {
	Method        models.PaymentMethod `json:"method"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id"`
	CardNumber    string               `json:"card_number"`
}

type paymentStatusRequest struct {
	Status models.PaymentStatus `json:"status"`
}

type paymentResponse struct {
	ID            string               `json:"id"`
	OrderID       string               `json:"order_id"`
	PayerID       string               `json:"payer_id"`
	Method        models.PaymentMethod `json:"method"`
	Amount        decimal.Decimal      `json:"amount"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id,omitempty"`
	CardLastFour  string               `json:"card_last_four,omitempty"`
	CreatedAt     string               `json:"created_at"`
	UpdatedAt     string               `json:"updated_at"`
}

func newPaymentResponse(p *models.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		PayerID:       p.PayerID,
		Method:        p.Method,
		Amount:        p.Amount,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CardLastFour:  p.CardLastFour,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

// RecordPayment records payment for order
// 201 — платёж записан;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — пользователь не является заказчиком;
// 404 — заказ не найден;
// 422 — неверный номер карты или способ оплаты.
func (ph *PaymentHandler) RecordPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req paymentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		payment, err := ph.svc.Record(r.Context(), p, chi.URLParam(r, "orderID"), models.PaymentInput{
			Method:        req.Method,
			Status:        req.Status,
			TransactionID: req.TransactionID,
			CardNumber:    req.CardNumber,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newPaymentResponse(payment))
	}
}

// ListPayments returns payments of order
func (ph *PaymentHandler) ListPayments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		payments, err := ph.svc.ListForOrder(r.Context(), p, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]paymentResponse, 0, len(payments))
		for _, payment := range payments {
			resp = append(resp, newPaymentResponse(&payment))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// SetPaymentStatus records gateway outcome of payment
func (ph *PaymentHandler) SetPaymentStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req paymentStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		payment, err := ph.svc.SetStatus(r.Context(), p, chi.URLParam(r, "paymentID"), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newPaymentResponse(payment))
	}
}
