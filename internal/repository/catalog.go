package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
	"github.com/shopspring/decimal"
)

const (
	catalogColumns = `id, owner_id, name, category, unit, price, stock, min_order_quantity, low_stock_threshold,
						disabled, created_at, updated_at`

	insertCatalogItemQuery = `
						INSERT INTO catalog_items (id, owner_id, name, category, unit, price, stock, min_order_quantity,
						                           low_stock_threshold, disabled, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	selectCatalogItemQuery = `
						SELECT ` + catalogColumns + ` FROM catalog_items
						WHERE id = $1
`
	decrementStockQuery = `
						UPDATE catalog_items
						SET stock = stock - $1, updated_at = $2
						WHERE id = $3 AND stock >= $1
						RETURNING ` + catalogColumns
	updateStockQuery = `
						UPDATE catalog_items
						SET stock = $1, updated_at = $2
						WHERE id = $3
						RETURNING ` + catalogColumns
	updatePriceQuery = `
						UPDATE catalog_items
						SET price = $1, updated_at = $2
						WHERE id = $3
						RETURNING ` + catalogColumns
	updateDisabledQuery = `
						UPDATE catalog_items
						SET disabled = $1, updated_at = $2
						WHERE id = $3
						RETURNING ` + catalogColumns
)

// CatalogRepository implements CatalogRepository interface
type CatalogRepository struct {
	db *postgres.DB
}

// NewCatalogRepository creates new CatalogRepository instance
func NewCatalogRepository(db *postgres.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func scanCatalogItem(row interface{ Scan(dest ...any) error }, item *models.CatalogItem) error {
	return row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Category, &item.Unit, &item.Price, &item.Stock,
		&item.MinOrderQuantity, &item.LowStockThreshold, &item.Disabled, &item.CreatedAt, &item.UpdatedAt)
}

// CreateItem inserts new catalog item
func (cr *CatalogRepository) CreateItem(ctx context.Context, item *models.CatalogItem) error {
	_, err := cr.db.Exec(ctx, insertCatalogItemQuery, item.ID, item.OwnerID, item.Name, item.Category, item.Unit,
		item.Price, item.Stock, item.MinOrderQuantity, item.LowStockThreshold, item.Disabled, item.CreatedAt, item.UpdatedAt)
	return translate(cr.db, "create catalog item", err)
}

// GetItem returns catalog item by id
func (cr *CatalogRepository) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	item := models.CatalogItem{}
	if err := scanCatalogItem(cr.db.QueryRow(ctx, selectCatalogItemQuery, id), &item); err != nil {
		return nil, translate(cr.db, "get catalog item", err)
	}
	return &item, nil
}

// ListItems returns catalog items matching filter
func (cr *CatalogRepository) ListItems(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OwnerID != "" {
		where = append(where, "owner_id = "+arg(filter.OwnerID))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "name ILIKE "+arg("%"+q+"%"))
	}
	if filter.MaxPrice != nil {
		where = append(where, "price <= "+arg(*filter.MaxPrice))
	}
	if !filter.IncludeUnavailable {
		where = append(where, "is_available")
	}

	query := `SELECT ` + catalogColumns + ` FROM catalog_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + catalogOrderBy(filter.Sort)
	query += " LIMIT " + arg(limitOrDefault(filter.Limit)) + " OFFSET " + arg(max(filter.Offset, 0))

	rows, err := cr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(cr.db, "list catalog items", err)
	}
	defer rows.Close()

	items := []models.CatalogItem{}

	for rows.Next() {
		item := models.CatalogItem{}
		if err := scanCatalogItem(rows, &item); err != nil {
			return nil, translate(cr.db, "scan catalog item", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(cr.db, "list catalog items", err)
	}

	return items, nil
}

func catalogOrderBy(sort string) string {
	switch sort {
	case models.SortPriceAsc:
		return "price ASC, id"
	case models.SortPriceDesc:
		return "price DESC, id"
	case models.SortName:
		return "name ASC, id"
	default:
		return "created_at DESC, id"
	}
}

// DecrementStock atomically subtracts quantity if enough stock is left
func (cr *CatalogRepository) DecrementStock(ctx context.Context, id string, quantity int, at time.Time) (*models.CatalogItem, error) {
	item := models.CatalogItem{}
	err := scanCatalogItem(cr.db.QueryRow(ctx, decrementStockQuery, quantity, at, id), &item)
	if err == nil {
		return &item, nil
	}

	err = translate(cr.db, "decrement stock", err)
	if !errors.Is(err, models.ErrDataNotFound) {
		return nil, err
	}

	// either item is missing or stock is short
	cur, getErr := cr.GetItem(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	return nil, &models.InsufficientStockError{
		ItemID:    cur.ID,
		Name:      cur.Name,
		Requested: quantity,
		Available: cur.Stock,
	}
}

// UpdateStock sets stock
func (cr *CatalogRepository) UpdateStock(ctx context.Context, id string, stock int, at time.Time) (*models.CatalogItem, error) {
	item := models.CatalogItem{}
	if err := scanCatalogItem(cr.db.QueryRow(ctx, updateStockQuery, stock, at, id), &item); err != nil {
		return nil, translate(cr.db, "update stock", err)
	}
	return &item, nil
}

// UpdatePrice sets price
func (cr *CatalogRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal, at time.Time) (*models.CatalogItem, error) {
	item := models.CatalogItem{}
	if err := scanCatalogItem(cr.db.QueryRow(ctx, updatePriceQuery, price, at, id), &item); err != nil {
		return nil, translate(cr.db, "update price", err)
	}
	return &item, nil
}

// UpdateDisabled sets soft-disable flag
func (cr *CatalogRepository) UpdateDisabled(ctx context.Context, id string, disabled bool, at time.Time) (*models.CatalogItem, error) {
	item := models.CatalogItem{}
	if err := scanCatalogItem(cr.db.QueryRow(ctx, updateDisabledQuery, disabled, at, id), &item); err != nil {
		return nil, translate(cr.db, "update availability", err)
	}
	return &item, nil
}
