package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is order lifecycle state
type OrderStatus string

// order status
const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
}

// Valid reports whether status is known
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves status
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is adjacent to s
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// OrderItem is order line with price snapshot
type OrderItem struct {
	CatalogItemID string
	Name          string
	Unit          string
	Quantity      int
	UnitPrice     decimal.Decimal
}

// LineTotal returns unit price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotal returns exact sum of line totals
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Order is order entity
type Order struct {
	ID              string
	RequesterID     string
	FulfillerID     *string
	Items           []OrderItem
	Total           decimal.Decimal
	Status          OrderStatus
	DeliveryAddress string
	Phone           string
	Notes           string
	VoiceOrder      bool
	IdempotencyKey  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsParty reports whether actor is requester or fulfiller of order
func (o *Order) IsParty(actorID string) bool {
	return o.RequesterID == actorID || o.IsFulfiller(actorID)
}

// IsFulfiller reports whether actor fulfils order
func (o *Order) IsFulfiller(actorID string) bool {
	return o.FulfillerID != nil && *o.FulfillerID == actorID
}

// order list perspectives
const (
	OrderViewRequester = "requester"
	OrderViewFulfiller = "fulfiller"
)

// OrderFilter narrows order listing
type OrderFilter struct {
	RequesterID string
	FulfillerID string
	Status      OrderStatus
	Limit       int
	Offset      int
}

// OrderLine is requested catalog item and quantity
type OrderLine struct {
	CatalogItemID string
	Quantity      int
}

// DeliveryInfo is where and how to reach the requester
type DeliveryInfo struct {
	Address string
	Phone   string
	Notes   string
}

// VoiceOrder is pre-parsed voice transcript
type VoiceOrder struct {
	Transcript string
	Items      []OrderLine
	Total      decimal.Decimal
}
