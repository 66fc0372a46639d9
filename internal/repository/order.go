package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
)

const (
	orderColumns = `id, requester_id, fulfiller_id, total, status, delivery_address, phone, notes, voice_order,
						COALESCE(idempotency_key, ''), created_at, updated_at`

	insertOrderQuery = `
						INSERT INTO orders (id, requester_id, fulfiller_id, total, status, delivery_address, phone, notes,
						                    voice_order, idempotency_key, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)
`
	insertOrderItemQuery = `
						INSERT INTO order_items (order_id, line_no, catalog_item_id, name, unit, quantity, unit_price)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	selectOrderByIDQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE id = $1
`
	selectOrderByIdempotencyKeyQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE requester_id = $1 AND idempotency_key = $2
`
	selectOrderItemsQuery = `
						SELECT order_id, catalog_item_id, name, unit, quantity, unit_price FROM order_items
						WHERE order_id = ANY($1::uuid[])
						ORDER BY order_id, line_no
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, updated_at = $2
						WHERE id = $3 AND status = $4
`
)

// OrderRepository implements OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row interface{ Scan(dest ...any) error }, order *models.Order) error {
	var status string
	err := row.Scan(&order.ID, &order.RequesterID, &order.FulfillerID, &order.Total, &status, &order.DeliveryAddress,
		&order.Phone, &order.Notes, &order.VoiceOrder, &order.IdempotencyKey, &order.CreatedAt, &order.UpdatedAt)
	order.Status = models.OrderStatus(status)
	return err
}

// CreateOrder inserts new order with its items
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return or.db.WithinTx(ctx, func(ctx context.Context) error {
		_, err := or.db.Exec(ctx, insertOrderQuery, order.ID, order.RequesterID, order.FulfillerID, order.Total,
			string(order.Status), order.DeliveryAddress, order.Phone, order.Notes, order.VoiceOrder,
			order.IdempotencyKey, order.CreatedAt, order.UpdatedAt)
		if err != nil {
			return translate(or.db, "create order", err)
		}

		for i, item := range order.Items {
			_, err := or.db.Exec(ctx, insertOrderItemQuery, order.ID, i+1, item.CatalogItemID, item.Name, item.Unit,
				item.Quantity, item.UnitPrice)
			if err != nil {
				return translate(or.db, "create order item", err)
			}
		}

		return nil
	})
}

// GetOrder returns order with items
func (or *OrderRepository) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order := models.Order{}
	if err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id), &order); err != nil {
		return nil, translate(or.db, "get order", err)
	}

	orders := []models.Order{order}
	if err := or.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// GetOrderByIdempotencyKey returns order submitted by requester with key
func (or *OrderRepository) GetOrderByIdempotencyKey(ctx context.Context, requesterID, key string) (*models.Order, error) {
	order := models.Order{}
	if err := scanOrder(or.db.QueryRow(ctx, selectOrderByIdempotencyKeyQuery, requesterID, key), &order); err != nil {
		return nil, translate(or.db, "get order by idempotency key", err)
	}

	orders := []models.Order{order}
	if err := or.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// ListOrders returns orders matching filter, newest first
func (or *OrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.RequesterID != "" {
		where = append(where, "requester_id = "+arg(filter.RequesterID))
	}
	if filter.FulfillerID != "" {
		where = append(where, "fulfiller_id = "+arg(filter.FulfillerID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT " + arg(limitOrDefault(filter.Limit)) + " OFFSET " + arg(max(filter.Offset, 0))

	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(or.db, "list orders", err)
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		if err := scanOrder(rows, &order); err != nil {
			return nil, translate(or.db, "scan order", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(or.db, "list orders", err)
	}

	if err := or.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (or *OrderRepository) loadItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	index := make(map[string]int, len(orders))
	for i, order := range orders {
		ids = append(ids, order.ID)
		index[order.ID] = i
	}

	rows, err := or.db.Query(ctx, selectOrderItemsQuery, ids)
	if err != nil {
		return translate(or.db, "list order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		item := models.OrderItem{}
		if err := rows.Scan(&orderID, &item.CatalogItemID, &item.Name, &item.Unit, &item.Quantity, &item.UnitPrice); err != nil {
			return translate(or.db, "scan order item", err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	return translate(or.db, "list order items", rows.Err())
}

// UpdateOrderStatus moves order from status to status.
// Returns ErrConflictData if order is no longer in from.
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, string(to), at, id, string(from))
	if err != nil {
		return translate(or.db, "update order status", err)
	}

	if cmd.RowsAffected() == 0 {
		if _, err := or.GetOrder(ctx, id); errors.Is(err, models.ErrDataNotFound) {
			return models.ErrDataNotFound
		}
		return models.ErrConflictData
	}

	return nil
}
