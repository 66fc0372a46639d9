package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
)

const (
	notificationColumns = `id, recipient_id, category, topic, priority, title, message, is_read, action_required,
						order_id, created_at`

	insertNotificationQuery = `
						INSERT INTO notifications (id, recipient_id, category, topic, priority, title, message, is_read,
						                           action_required, order_id, created_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	markNotificationReadQuery = `
						UPDATE notifications
						SET is_read = TRUE
						WHERE id = $1 AND recipient_id = $2
`
	markAllNotificationsReadQuery = `
						UPDATE notifications
						SET is_read = TRUE
						WHERE recipient_id = $1 AND NOT is_read
`
	deleteNotificationQuery = `
						DELETE FROM notifications
						WHERE id = $1 AND recipient_id = $2
`
	countUnreadNotificationsQuery = `
						SELECT COUNT(*) FROM notifications
						WHERE recipient_id = $1 AND NOT is_read
`
)

// NotificationRepository implements NotificationRepository interface
type NotificationRepository struct {
	db *postgres.DB
}

// NewNotificationRepository creates new NotificationRepository instance
func NewNotificationRepository(db *postgres.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts new notification
func (nr *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := nr.db.Exec(ctx, insertNotificationQuery, n.ID, n.RecipientID, string(n.Category), n.Topic,
		string(n.Priority), n.Title, n.Message, n.Read, n.ActionRequired, n.OrderID, n.CreatedAt)
	return translate(nr.db, "create notification", err)
}

// ListNotifications returns recipient notifications newest first
func (nr *NotificationRepository) ListNotifications(ctx context.Context, recipientID string, filter models.NotificationFilter) ([]models.Notification, error) {
	args := []any{recipientID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{"recipient_id = $1"}
	if filter.UnreadOnly {
		where = append(where, "NOT is_read")
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(string(filter.Category)))
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id LIMIT ` + arg(limitOrDefault(filter.Limit)) + ` OFFSET ` + arg(max(filter.Offset, 0))

	rows, err := nr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(nr.db, "list notifications", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}

	for rows.Next() {
		var category, priority string
		n := models.Notification{}
		err := rows.Scan(&n.ID, &n.RecipientID, &category, &n.Topic, &priority, &n.Title, &n.Message, &n.Read,
			&n.ActionRequired, &n.OrderID, &n.CreatedAt)
		if err != nil {
			return nil, translate(nr.db, "scan notification", err)
		}
		n.Category = models.NotificationCategory(category)
		n.Priority = models.Priority(priority)
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(nr.db, "list notifications", err)
	}

	return notifications, nil
}

// MarkRead marks recipient notification read
func (nr *NotificationRepository) MarkRead(ctx context.Context, recipientID, id string) error {
	cmd, err := nr.db.Exec(ctx, markNotificationReadQuery, id, recipientID)
	if err != nil {
		return translate(nr.db, "mark notification read", err)
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// MarkAllRead marks every recipient notification read and returns how many changed
func (nr *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	cmd, err := nr.db.Exec(ctx, markAllNotificationsReadQuery, recipientID)
	if err != nil {
		return 0, translate(nr.db, "mark all notifications read", err)
	}
	return int(cmd.RowsAffected()), nil
}

// DeleteNotification deletes recipient notification
func (nr *NotificationRepository) DeleteNotification(ctx context.Context, recipientID, id string) error {
	cmd, err := nr.db.Exec(ctx, deleteNotificationQuery, id, recipientID)
	if err != nil {
		return translate(nr.db, "delete notification", err)
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// CountUnread returns number of unread recipient notifications
func (nr *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	if err := nr.db.QueryRow(ctx, countUnreadNotificationsQuery, recipientID).Scan(&count); err != nil {
		return 0, translate(nr.db, "count unread notifications", err)
	}
	return count, nil
}
