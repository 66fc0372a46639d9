package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is sellable ingredient or product
type CatalogItem struct {
	ID                string
	OwnerID           string
	Name              string
	Category          string
	Unit              string
	Price             decimal.Decimal
	Stock             int
	MinOrderQuantity  int
	LowStockThreshold int
	// Disabled is owner soft-disable, the item stays unavailable regardless of stock
	Disabled  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available reports whether item can be ordered
func (i CatalogItem) Available() bool {
	return !i.Disabled && i.Stock > 0
}

// LowStock reports whether stock is at or below threshold
func (i CatalogItem) LowStock() bool {
	return i.Stock <= i.LowStockThreshold
}

// catalog sort orders
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// CatalogFilter narrows catalog listing
type CatalogFilter struct {
	OwnerID            string
	Category           string
	Query              string
	MaxPrice           *decimal.Decimal
	IncludeUnavailable bool
	Sort               string
	Limit              int
	Offset             int
}
