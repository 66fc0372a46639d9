package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
)

// CreateItem stores new catalog item
func (s *Store) CreateItem(ctx context.Context, item *models.CatalogItem) error {
	defer s.lock(ctx)()

	if _, ok := s.items[item.ID]; ok {
		return models.ErrConflictData
	}
	if _, ok := s.actors[item.OwnerID]; !ok {
		return models.ErrDataNotFound
	}

	s.items[item.ID] = *item
	return nil
}

// GetItem returns catalog item by id
func (s *Store) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	defer s.lock(ctx)()

	item, ok := s.items[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return &item, nil
}

// ListItems returns catalog items matching filter
func (s *Store) ListItems(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, error) {
	defer s.lock(ctx)()

	query := strings.ToLower(strings.TrimSpace(filter.Query))

	items := []models.CatalogItem{}
	for _, item := range s.items {
		if filter.OwnerID != "" && item.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		if filter.MaxPrice != nil && item.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		if !filter.IncludeUnavailable && !item.Available() {
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch filter.Sort {
		case models.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case models.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case models.SortName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	return window(items, filter.Limit, filter.Offset), nil
}

// DecrementStock subtracts quantity if enough stock is left
func (s *Store) DecrementStock(ctx context.Context, id string, quantity int, at time.Time) (*models.CatalogItem, error) {
	defer s.lock(ctx)()

	item, ok := s.items[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	if item.Stock < quantity {
		return nil, &models.InsufficientStockError{
			ItemID:    item.ID,
			Name:      item.Name,
			Requested: quantity,
			Available: item.Stock,
		}
	}

	item.Stock -= quantity
	item.UpdatedAt = at
	s.items[id] = item
	return &item, nil
}

func (s *Store) updateItem(ctx context.Context, id string, at time.Time, fn func(item *models.CatalogItem)) (*models.CatalogItem, error) {
	defer s.lock(ctx)()

	item, ok := s.items[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	fn(&item)
	item.UpdatedAt = at
	s.items[id] = item
	return &item, nil
}

// UpdateStock sets stock
func (s *Store) UpdateStock(ctx context.Context, id string, stock int, at time.Time) (*models.CatalogItem, error) {
	if stock < 0 {
		return nil, models.NewValidationError("stock", "must not be negative")
	}
	return s.updateItem(ctx, id, at, func(item *models.CatalogItem) { item.Stock = stock })
}

// UpdatePrice sets price
func (s *Store) UpdatePrice(ctx context.Context, id string, price decimal.Decimal, at time.Time) (*models.CatalogItem, error) {
	if !price.IsPositive() {
		return nil, models.NewValidationError("price", "must be positive")
	}
	return s.updateItem(ctx, id, at, func(item *models.CatalogItem) { item.Price = price })
}

// UpdateDisabled sets soft-disable flag
func (s *Store) UpdateDisabled(ctx context.Context, id string, disabled bool, at time.Time) (*models.CatalogItem, error) {
	return s.updateItem(ctx, id, at, func(item *models.CatalogItem) { item.Disabled = disabled })
}
