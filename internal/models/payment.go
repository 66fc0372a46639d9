package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how order was paid
type PaymentMethod string

// payment methods
const (
	PaymentWallet PaymentMethod = "wallet"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCash   PaymentMethod = "cash"
)

// Valid reports whether method is known
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentWallet, PaymentCard, PaymentUPI, PaymentCash:
		return true
	}
	return false
}

// PaymentStatus is recorded gateway outcome
type PaymentStatus string

// payment status
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Valid reports whether status is known
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether payment status may move to next
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentPending:
		return next == PaymentCompleted || next == PaymentFailed
	case PaymentCompleted:
		return next == PaymentRefunded
	}
	return false
}

// Payment is payment record for order
type Payment struct {
	ID            string
	OrderID       string
	PayerID       string
	Method        PaymentMethod
	Amount        decimal.Decimal
	Status        PaymentStatus
	TransactionID string
	CardLastFour  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PaymentInput describes payment to record
type PaymentInput struct {
	Method        PaymentMethod
	Status        PaymentStatus
	TransactionID string
	CardNumber    string
}
