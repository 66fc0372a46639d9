package repository

import (
	"context"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
)

const (
	eventColumns = `id, order_id, type, actor_id, from_status, to_status, payload, created_at, published_at`

	insertEventQuery = `
						INSERT INTO order_events (order_id, type, actor_id, from_status, to_status, payload, created_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING id
`
	selectEventsByOrderQuery = `
						SELECT ` + eventColumns + ` FROM order_events
						WHERE order_id = $1
						ORDER BY id
`
	selectUnpublishedEventsQuery = `
						SELECT ` + eventColumns + ` FROM order_events
						WHERE published_at IS NULL
						ORDER BY id
						LIMIT $1
						FOR UPDATE SKIP LOCKED
`
	markEventsPublishedQuery = `
						UPDATE order_events
						SET published_at = $1
						WHERE id = ANY($2)
`
)

// EventRepository implements EventRepository interface over the order_events outbox
type EventRepository struct {
	db *postgres.DB
}

// NewEventRepository creates new EventRepository instance
func NewEventRepository(db *postgres.DB) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row interface{ Scan(dest ...any) error }, e *models.OrderEvent) error {
	var from, to string
	err := row.Scan(&e.ID, &e.OrderID, &e.Type, &e.ActorID, &from, &to, &e.Payload, &e.CreatedAt, &e.PublishedAt)
	e.FromStatus = models.OrderStatus(from)
	e.ToStatus = models.OrderStatus(to)
	return err
}

// AppendEvent inserts event and sets its id
func (er *EventRepository) AppendEvent(ctx context.Context, e *models.OrderEvent) error {
	payload := e.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	err := er.db.QueryRow(ctx, insertEventQuery, e.OrderID, e.Type, e.ActorID, string(e.FromStatus),
		string(e.ToStatus), payload, e.CreatedAt).Scan(&e.ID)
	return translate(er.db, "append event", err)
}

// ListEventsByOrder returns order events oldest first
func (er *EventRepository) ListEventsByOrder(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	return er.list(ctx, "list events", selectEventsByOrderQuery, orderID)
}

// FetchUnpublished returns up to limit unpublished events, locking them for the current transaction
func (er *EventRepository) FetchUnpublished(ctx context.Context, limit int) ([]models.OrderEvent, error) {
	return er.list(ctx, "fetch unpublished events", selectUnpublishedEventsQuery, limitOrDefault(limit))
}

func (er *EventRepository) list(ctx context.Context, op, query string, args ...any) ([]models.OrderEvent, error) {
	rows, err := er.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(er.db, op, err)
	}
	defer rows.Close()

	events := []models.OrderEvent{}

	for rows.Next() {
		e := models.OrderEvent{}
		if err := scanEvent(rows, &e); err != nil {
			return nil, translate(er.db, op, err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(er.db, op, err)
	}

	return events, nil
}

// MarkPublished sets publish time of events
func (er *EventRepository) MarkPublished(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := er.db.Exec(ctx, markEventsPublishedQuery, at, ids)
	return translate(er.db, "mark events published", err)
}
