package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is actor role
type Role string

// actor roles
const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleSupplier Role = "supplier"
)

// Capability is a single operation class an actor may perform
type Capability uint8

const (
	// CapPlaceOrder allows submitting orders
	CapPlaceOrder Capability = 1 << iota
	// CapFulfillOrder allows accepting and progressing orders placed against own catalog
	CapFulfillOrder
	// CapManageCatalog allows creating items and changing their stock and price
	CapManageCatalog
	// CapRate allows rating a fulfilling actor after delivery
	CapRate
)

var roleCapabilities = map[Role]Capability{
	RoleCustomer: CapPlaceOrder | CapRate,
	RoleVendor:   CapPlaceOrder | CapFulfillOrder | CapManageCatalog | CapRate,
	RoleSupplier: CapFulfillOrder | CapManageCatalog,
}

// Valid reports whether role is known
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Capabilities returns capability set of role
func (r Role) Capabilities() Capability {
	return roleCapabilities[r]
}

// Can reports whether role holds capability c
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r]&c == c
}

func (c Capability) String() string {
	switch c {
	case CapPlaceOrder:
		return "place_order"
	case CapFulfillOrder:
		return "fulfill_order"
	case CapManageCatalog:
		return "manage_catalog"
	case CapRate:
		return "rate"
	default:
		return "unknown"
	}
}

// Principal is authenticated caller identity supplied by the auth layer
type Principal struct {
	ActorID string
	Role    Role
}

// Can reports whether principal holds capability c
func (p Principal) Can(c Capability) bool {
	return p.Role.Can(c)
}

// Actor is marketplace participant profile
type Actor struct {
	ID           string
	Login        string
	PasswordHash string
	Role         Role
	DisplayName  string
	BusinessName string
	Phone        string
	Address      string
	City         string
	Rating       decimal.Decimal
	TotalRatings int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActorFilter narrows actor directory listing
type ActorFilter struct {
	Role   Role
	City   string
	Limit  int
	Offset int
}

// ProfileUpdate replaces editable profile fields
type ProfileUpdate struct {
	DisplayName  string
	BusinessName string
	Phone        string
	Address      string
	City         string
}

// Principal returns actor identity
func (a *Actor) Principal() Principal {
	return Principal{ActorID: a.ID, Role: a.Role}
}
