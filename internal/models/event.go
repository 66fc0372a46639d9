package models

import (
	"encoding/json"
	"time"
)

// order event types
const (
	EventOrderSubmitted = "order.submitted"
	EventRatingRecorded = "rating.recorded"
)

// OrderEvent is lifecycle event kept as audit trail and relayed to broker
type OrderEvent struct {
	ID          int64
	OrderID     string
	Type        string
	ActorID     string
	FromStatus  OrderStatus
	ToStatus    OrderStatus
	Payload     json.RawMessage
	CreatedAt   time.Time
	PublishedAt *time.Time
}
