package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rookgm/streetmart/internal/logger"
	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// StockKeeper reads catalog items and decrements their stock
type StockKeeper interface {
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
	DecrementStock(ctx context.Context, id string, quantity int) (*models.CatalogItem, error)
}

// ActorReader reads actor profiles
type ActorReader interface {
	GetActorByID(ctx context.Context, id string) (*models.Actor, error)
}

// SubmitRequest is order placed from catalog
type SubmitRequest struct {
	Items          []models.OrderLine
	Delivery       models.DeliveryInfo
	IdempotencyKey string
}

// VoiceSubmitRequest is order parsed from speech
type VoiceSubmitRequest struct {
	Order          models.VoiceOrder
	Delivery       models.DeliveryInfo
	IdempotencyKey string
}

// ListRequest narrows order listing
type ListRequest struct {
	View   string
	Status models.OrderStatus
	Limit  int
	Offset int
}

// OrderService is order lifecycle engine
type OrderService struct {
	base
	tx       Transactor
	orders   OrderRepository
	catalog  StockKeeper
	actors   ActorReader
	events   EventRepository
	notifier Notifier
	money    *MoneyFormatter
	metrics  *metrics.Metrics
}

// NewOrderService creates new OrderService instance
func NewOrderService(tx Transactor, orders OrderRepository, catalog StockKeeper, actors ActorReader,
	events EventRepository, notifier Notifier, money *MoneyFormatter, m *metrics.Metrics, opts ...Option) *OrderService {
	return &OrderService{
		base:     newBase(opts),
		tx:       tx,
		orders:   orders,
		catalog:  catalog,
		actors:   actors,
		events:   events,
		notifier: notifier,
		money:    money,
		metrics:  m,
	}
}

// Submit places pending order for items of one seller
func (os *OrderService) Submit(ctx context.Context, p models.Principal, req SubmitRequest) (*models.Order, error) {
	return os.submit(ctx, p, req.Items, req.Delivery, req.IdempotencyKey, nil)
}

// SubmitVoice places pending order from parsed speech. Parsed total must match computed total.
func (os *OrderService) SubmitVoice(ctx context.Context, p models.Principal, req VoiceSubmitRequest) (*models.Order, error) {
	return os.submit(ctx, p, req.Order.Items, req.Delivery, req.IdempotencyKey, &req.Order)
}

func (os *OrderService) submit(ctx context.Context, p models.Principal, lines []models.OrderLine,
	delivery models.DeliveryInfo, key string, voice *models.VoiceOrder) (order *models.Order, err error) {
	ctx, span := os.tracer.Start(ctx, "order.submit", trace.WithAttributes(
		attribute.String("actor.id", p.ActorID),
		attribute.Bool("order.voice", voice != nil),
	))
	defer func() { endSpan(span, err) }()

	if !p.Can(models.CapPlaceOrder) {
		return nil, models.NewAuthorizationError("place order")
	}

	key = strings.TrimSpace(key)
	if key != "" {
		existing, err := os.orders.GetOrderByIdempotencyKey(ctx, p.ActorID, key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, models.ErrDataNotFound) {
			return nil, err
		}
	}

	if strings.TrimSpace(delivery.Address) == "" {
		return nil, models.NewValidationError("delivery_address", "is required")
	}

	items, fulfillerID, err := os.priceLines(ctx, p, lines)
	if err != nil {
		return nil, err
	}

	total := models.OrderTotal(items)
	if voice != nil && !voice.Total.Equal(total) {
		return nil, models.NewValidationError("total",
			fmt.Sprintf("parsed total %s does not match computed total %s", voice.Total.String(), total.String()))
	}

	now := os.now()
	order = &models.Order{
		ID:              os.newID(),
		RequesterID:     p.ActorID,
		FulfillerID:     &fulfillerID,
		Items:           items,
		Total:           total,
		Status:          models.OrderStatusPending,
		DeliveryAddress: strings.TrimSpace(delivery.Address),
		Phone:           strings.TrimSpace(delivery.Phone),
		Notes:           delivery.Notes,
		VoiceOrder:      voice != nil,
		IdempotencyKey:  key,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = os.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := os.orders.CreateOrder(ctx, order); err != nil {
			return err
		}

		payload := os.eventPayload(order)
		if voice != nil {
			payload.Transcript = strings.TrimSpace(voice.Transcript)
		}
		if err := os.appendEventPayload(ctx, order, models.EventOrderSubmitted, p.ActorID, "", models.OrderStatusPending, payload); err != nil {
			return err
		}

		_, err := os.notifier.Emit(ctx, models.NotificationInput{
			RecipientID:    fulfillerID,
			Category:       models.CategoryOrder,
			Topic:          models.TopicOrderSubmitted,
			Priority:       models.PriorityHigh,
			Title:          "New order",
			Message:        fmt.Sprintf("New order %s for %s", shortID(order.ID), os.money.Format(order.Total)),
			ActionRequired: true,
			OrderID:        &order.ID,
		})
		return err
	})
	if err != nil {
		// concurrent submit with same key won the insert
		if key != "" && errors.Is(err, models.ErrConflictData) {
			return os.orders.GetOrderByIdempotencyKey(ctx, p.ActorID, key)
		}
		return nil, err
	}

	os.metrics.OrderSubmitted(order.VoiceOrder)
	logger.Log.Info("order submitted",
		zap.String("order", order.ID),
		zap.String("requester", order.RequesterID),
		zap.String("fulfiller", fulfillerID),
		zap.String("total", order.Total.String()))

	return order, nil
}

// priceLines validates lines against catalog and snapshots unit prices.
// The stock comparison here is advisory; acceptance decrements atomically.
func (os *OrderService) priceLines(ctx context.Context, p models.Principal, lines []models.OrderLine) ([]models.OrderItem, string, error) {
	if len(lines) == 0 {
		return nil, "", models.NewValidationError("items", "must not be empty")
	}

	var (
		items     = make([]models.OrderItem, 0, len(lines))
		seen      = make(map[string]struct{}, len(lines))
		fulfiller string
	)

	for i, line := range lines {
		field := fmt.Sprintf("items[%d]", i)

		if line.CatalogItemID == "" {
			return nil, "", models.NewValidationError(field+".catalog_item_id", "is required")
		}
		if line.Quantity <= 0 {
			return nil, "", models.NewValidationError(field+".quantity", "must be positive")
		}
		if _, ok := seen[line.CatalogItemID]; ok {
			return nil, "", models.NewValidationError(field+".catalog_item_id", "duplicate item")
		}
		seen[line.CatalogItemID] = struct{}{}

		item, err := os.catalog.GetItem(ctx, line.CatalogItemID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				return nil, "", models.NewValidationError(field+".catalog_item_id", "unknown catalog item")
			}
			return nil, "", err
		}

		switch {
		case fulfiller == "":
			fulfiller = item.OwnerID
		case fulfiller != item.OwnerID:
			return nil, "", models.NewValidationError("items", "all items must come from one seller")
		}

		if item.Disabled {
			return nil, "", models.NewValidationError(field, item.Name+" is not available")
		}
		if line.Quantity < item.MinOrderQuantity {
			return nil, "", models.NewValidationError(field+".quantity",
				fmt.Sprintf("minimum order quantity for %s is %d", item.Name, item.MinOrderQuantity))
		}
		if line.Quantity > item.Stock {
			return nil, "", &models.InsufficientStockError{
				ItemID:    item.ID,
				Name:      item.Name,
				Requested: line.Quantity,
				Available: item.Stock,
			}
		}

		items = append(items, models.OrderItem{
			CatalogItemID: item.ID,
			Name:          item.Name,
			Unit:          item.Unit,
			Quantity:      line.Quantity,
			UnitPrice:     item.Price,
		})
	}

	if fulfiller == p.ActorID {
		return nil, "", models.NewValidationError("items", "can not order own items")
	}

	seller, err := os.actors.GetActorByID(ctx, fulfiller)
	if err != nil {
		return nil, "", err
	}
	if !seller.IsActive || !seller.Role.Can(models.CapFulfillOrder) {
		return nil, "", models.NewValidationError("items", "seller can not fulfil orders")
	}

	return items, fulfiller, nil
}

// Transition moves order to target status on behalf of principal.
// Actors that are not party of the order get ErrDataNotFound.
func (os *OrderService) Transition(ctx context.Context, p models.Principal, orderID string, target models.OrderStatus) (order *models.Order, err error) {
	ctx, span := os.tracer.Start(ctx, "order.transition", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.target", string(target)),
	))
	defer func() { endSpan(span, err) }()

	if !target.Valid() {
		return nil, models.NewValidationError("status", "unknown order status")
	}

	err = os.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := os.orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !cur.IsParty(p.ActorID) {
			return models.ErrDataNotFound
		}

		from := cur.Status
		if !from.CanTransitionTo(target) {
			return &models.InvalidTransitionError{From: from, To: target}
		}
		if err := authorizeTransition(p, cur, target); err != nil {
			return err
		}

		if target == models.OrderStatusConfirmed {
			for _, item := range cur.Items {
				if _, err := os.catalog.DecrementStock(ctx, item.CatalogItemID, item.Quantity); err != nil {
					if errors.Is(err, models.ErrInsufficientStock) {
						os.metrics.StockRejected()
					}
					return err
				}
			}
		}

		now := os.now()
		if err := os.orders.UpdateOrderStatus(ctx, cur.ID, from, target, now); err != nil {
			if errors.Is(err, models.ErrConflictData) {
				// order moved since it was read
				latest, getErr := os.orders.GetOrder(ctx, cur.ID)
				if getErr != nil {
					return getErr
				}
				return &models.InvalidTransitionError{From: latest.Status, To: target}
			}
			return err
		}
		cur.Status = target
		cur.UpdatedAt = now

		if err := os.appendEvent(ctx, cur, models.OrderTopic(target), p.ActorID, from, target); err != nil {
			return err
		}
		if err := os.notifyTransition(ctx, p, cur); err != nil {
			return err
		}

		order = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	os.metrics.OrderTransitioned(target)
	logger.Log.Info("order status changed",
		zap.String("order", order.ID),
		zap.String("actor", p.ActorID),
		zap.String("status", string(order.Status)))

	return order, nil
}

// authorizeTransition checks principal may apply transition to order.
// Pending orders may be withdrawn by requester, every other change belongs to fulfiller.
func authorizeTransition(p models.Principal, order *models.Order, target models.OrderStatus) error {
	if order.Status == models.OrderStatusPending && target == models.OrderStatusCancelled && order.RequesterID == p.ActorID {
		return nil
	}
	if !order.IsFulfiller(p.ActorID) || !p.Can(models.CapFulfillOrder) {
		return models.NewAuthorizationError(transitionAction(order.Status, target))
	}
	return nil
}

func transitionAction(from, to models.OrderStatus) string {
	switch {
	case from == models.OrderStatusPending && to == models.OrderStatusConfirmed:
		return "accept order"
	case from == models.OrderStatusPending && to == models.OrderStatusCancelled:
		return "reject order"
	default:
		return "move order to " + string(to)
	}
}

var transitionTitles = map[models.OrderStatus]string{
	models.OrderStatusConfirmed:      "Order accepted",
	models.OrderStatusCancelled:      "Order cancelled",
	models.OrderStatusPreparing:      "Order is being prepared",
	models.OrderStatusOutForDelivery: "Order is out for delivery",
	models.OrderStatusDelivered:      "Order delivered",
}

func (os *OrderService) notifyTransition(ctx context.Context, p models.Principal, order *models.Order) error {
	title := transitionTitles[order.Status]
	priority := models.PriorityMedium
	if order.Status == models.OrderStatusCancelled || order.Status == models.OrderStatusConfirmed {
		priority = models.PriorityHigh
	}

	in := models.NotificationInput{
		RecipientID: order.RequesterID,
		Category:    models.CategoryOrder,
		Topic:       models.OrderTopic(order.Status),
		Priority:    priority,
		Title:       title,
		Message: fmt.Sprintf("Order %s (%s) is now %s", shortID(order.ID), os.money.Format(order.Total),
			strings.ReplaceAll(string(order.Status), "_", " ")),
		ActionRequired: order.Status == models.OrderStatusDelivered,
		OrderID:        &order.ID,
	}
	if _, err := os.notifier.Emit(ctx, in); err != nil {
		return err
	}

	// requester withdrew, let the seller know as well
	if order.Status == models.OrderStatusCancelled && p.ActorID == order.RequesterID && order.FulfillerID != nil {
		in.RecipientID = *order.FulfillerID
		in.Title = "Order withdrawn"
		in.ActionRequired = false
		if _, err := os.notifier.Emit(ctx, in); err != nil {
			return err
		}
	}

	return nil
}

type eventPayload struct {
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	Items       int    `json:"items"`
	Voice       bool   `json:"voice"`
	RequesterID string `json:"requester_id"`
	FulfillerID string `json:"fulfiller_id,omitempty"`
	// Transcript is raw speech of voice order
	Transcript string `json:"transcript,omitempty"`
}

func (os *OrderService) eventPayload(order *models.Order) eventPayload {
	payload := eventPayload{
		Total:       order.Total.StringFixed(2),
		Currency:    os.money.Currency(),
		Items:       len(order.Items),
		Voice:       order.VoiceOrder,
		RequesterID: order.RequesterID,
	}
	if order.FulfillerID != nil {
		payload.FulfillerID = *order.FulfillerID
	}
	return payload
}

func (os *OrderService) appendEvent(ctx context.Context, order *models.Order, typ, actorID string, from, to models.OrderStatus) error {
	return os.appendEventPayload(ctx, order, typ, actorID, from, to, os.eventPayload(order))
}

func (os *OrderService) appendEventPayload(ctx context.Context, order *models.Order, typ, actorID string,
	from, to models.OrderStatus, payload eventPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return os.events.AppendEvent(ctx, &models.OrderEvent{
		OrderID:    order.ID,
		Type:       typ,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   to,
		Payload:    raw,
		CreatedAt:  os.now(),
	})
}

// Get returns order visible to principal
func (os *OrderService) Get(ctx context.Context, p models.Principal, orderID string) (*models.Order, error) {
	order, err := os.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(p.ActorID) {
		return nil, models.ErrDataNotFound
	}
	return order, nil
}

// List returns orders placed by principal or placed against principal catalog
func (os *OrderService) List(ctx context.Context, p models.Principal, req ListRequest) ([]models.Order, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, models.NewValidationError("status", "unknown order status")
	}

	view := req.View
	if view == "" {
		view = models.OrderViewRequester
		if !p.Can(models.CapPlaceOrder) {
			view = models.OrderViewFulfiller
		}
	}

	filter := models.OrderFilter{
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	switch view {
	case models.OrderViewRequester:
		filter.RequesterID = p.ActorID
	case models.OrderViewFulfiller:
		if !p.Can(models.CapFulfillOrder) {
			return nil, models.NewAuthorizationError("list incoming orders")
		}
		filter.FulfillerID = p.ActorID
	default:
		return nil, models.NewValidationError("view", "must be requester or fulfiller")
	}

	return os.orders.ListOrders(ctx, filter)
}

// History returns lifecycle events of order visible to principal
func (os *OrderService) History(ctx context.Context, p models.Principal, orderID string) ([]models.OrderEvent, error) {
	if _, err := os.Get(ctx, p, orderID); err != nil {
		return nil, err
	}
	return os.events.ListEventsByOrder(ctx, orderID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
