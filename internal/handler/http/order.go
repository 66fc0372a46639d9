package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/shopspring/decimal"
)

const idempotencyKeyHeader = "Idempotency-Key"

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type deliveryRequest struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

type submitOrderRequest struct {
	Items    []orderLineRequest `json:"items"`
	Delivery deliveryRequest    `json:"delivery"`
}

type voiceOrderRequest struct {
	Transcript string             `json:"transcript"`
	Items      []orderLineRequest `json:"items"`
	Total      decimal.Decimal    `json:"total"`
	Delivery   deliveryRequest    `json:"delivery"`
}

type transitionRequest struct {
	Status models.OrderStatus `json:"status"`
}

type orderItemResponse struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	RequesterID string              `json:"requester_id"`
	FulfillerID *string             `json:"fulfiller_id,omitempty"`
	Items       []orderItemResponse `json:"items"`
	Total       decimal.Decimal     `json:"total"`
	Status      models.OrderStatus  `json:"status"`
	Address     string              `json:"delivery_address"`
	Phone       string              `json:"phone,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Voice       bool                `json:"voice_order"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

func newOrderResponse(o *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ItemID:    item.CatalogItemID,
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}

	return orderResponse{
		ID:          o.ID,
		RequesterID: o.RequesterID,
		FulfillerID: o.FulfillerID,
		Items:       items,
		Total:       o.Total,
		Status:      o.Status,
		Address:     o.DeliveryAddress,
		Phone:       o.Phone,
		Notes:       o.Notes,
		Voice:       o.VoiceOrder,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
}

type orderEventResponse struct {
	ID        int64              `json:"id"`
	Type      string             `json:"type"`
	ActorID   string             `json:"actor_id,omitempty"`
	From      models.OrderStatus `json:"from,omitempty"`
	To        models.OrderStatus `json:"to,omitempty"`
	Payload   json.RawMessage    `json:"payload,omitempty"`
	CreatedAt string             `json:"created_at"`
}

func orderLines(lines []orderLineRequest) []models.OrderLine {
	result := make([]models.OrderLine, 0, len(lines))
	for _, l := range lines {
		result = append(result, models.OrderLine{CatalogItemID: l.ItemID, Quantity: l.Quantity})
	}
	return result
}

func (d deliveryRequest) info() models.DeliveryInfo {
	return models.DeliveryInfo{Address: d.Address, Phone: d.Phone, Notes: d.Notes}
}

// SubmitOrder places order from catalog items
// 201 — заказ создан;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — роль не может размещать заказы;
// 409 — недостаточно товара;
// 422 — ошибка валидации.
func (oh *OrderHandler) SubmitOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req submitOrderRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		order, err := oh.svc.Submit(r.Context(), p, service.SubmitRequest{
			Items:          orderLines(req.Items),
			Delivery:       req.Delivery.info(),
			IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newOrderResponse(order))
	}
}

// SubmitVoiceOrder places order parsed from voice transcript
func (oh *OrderHandler) SubmitVoiceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req voiceOrderRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		order, err := oh.svc.SubmitVoice(r.Context(), p, service.VoiceSubmitRequest{
			Order: models.VoiceOrder{
				Transcript: req.Transcript,
				Items:      orderLines(req.Items),
				Total:      req.Total,
			},
			Delivery:       req.Delivery.info(),
			IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newOrderResponse(order))
	}
}

// ListOrders returns orders of authenticated actor
// 200 — успешная обработка запроса;
// 401 — пользователь не аутентифицирован;
// 422 — неверные параметры запроса.
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		limit, offset, err := page(r)
		if err != nil {
			writeError(w, err)
			return
		}

		orders, err := oh.svc.List(r.Context(), p, service.ListRequest{
			View:   r.URL.Query().Get("view"),
			Status: models.OrderStatus(r.URL.Query().Get("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			resp = append(resp, newOrderResponse(&o))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// GetOrder returns order visible to authenticated actor
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		order, err := oh.svc.Get(r.Context(), p, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// TransitionOrder moves order to requested status
// 200 — статус изменён;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — пользователь не может выполнить переход;
// 404 — заказ не найден;
// 409 — недопустимый переход или недостаточно товара;
// 422 — неизвестный статус.
func (oh *OrderHandler) TransitionOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req transitionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		order, err := oh.svc.Transition(r.Context(), p, chi.URLParam(r, "orderID"), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// OrderEvents returns lifecycle history of order
func (oh *OrderHandler) OrderEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		events, err := oh.svc.History(r.Context(), p, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]orderEventResponse, 0, len(events))
		for _, e := range events {
			resp = append(resp, orderEventResponse{
				ID:        e.ID,
				Type:      e.Type,
				ActorID:   e.ActorID,
				From:      e.FromStatus,
				To:        e.ToStatus,
				Payload:   e.Payload,
				CreatedAt: e.CreatedAt.Format(time.RFC3339),
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
