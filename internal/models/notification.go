package models

import "time"

// NotificationCategory groups notifications
type NotificationCategory string

// notification categories
const (
	CategoryOrder     NotificationCategory = "order"
	CategoryPayment   NotificationCategory = "payment"
	CategoryInventory NotificationCategory = "inventory"
	CategorySystem    NotificationCategory = "system"
	CategoryPromotion NotificationCategory = "promotion"
)

// Valid reports whether category is known
func (c NotificationCategory) Valid() bool {
	switch c {
	case CategoryOrder, CategoryPayment, CategoryInventory, CategorySystem, CategoryPromotion:
		return true
	}
	return false
}

// Priority is notification priority
type Priority string

// notification priorities
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// notification topics
const (
	TopicOrderSubmitted    = "order.submitted"
	TopicInventoryLowStock = "inventory.low_stock"
	TopicPaymentRecorded   = "payment.recorded"
)

// OrderTopic returns topic for order transition to status
func OrderTopic(status OrderStatus) string {
	return "order." + string(status)
}

// Notification is user-facing event
type Notification struct {
	ID             string
	RecipientID    string
	Category       NotificationCategory
	Topic          string
	Priority       Priority
	Title          string
	Message        string
	Read           bool
	ActionRequired bool
	OrderID        *string
	CreatedAt      time.Time
}

// NotificationInput describes notification to emit
type NotificationInput struct {
	RecipientID    string
	Category       NotificationCategory
	Topic          string
	Priority       Priority
	Title          string
	Message        string
	ActionRequired bool
	OrderID        *string
}

// NotificationFilter narrows inbox listing
type NotificationFilter struct {
	UnreadOnly bool
	Category   NotificationCategory
	Limit      int
	Offset     int
}
