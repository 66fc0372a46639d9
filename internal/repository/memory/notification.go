package memory

import (
	"context"
	"sort"

	"github.com/rookgm/streetmart/internal/models"
)

// CreateNotification stores notification
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	defer s.lock(ctx)()

	if _, ok := s.notifications[n.ID]; ok {
		return models.ErrConflictData
	}
	s.notifications[n.ID] = *n
	return nil
}

// ListNotifications returns recipient notifications newest first
func (s *Store) ListNotifications(ctx context.Context, recipientID string, filter models.NotificationFilter) ([]models.Notification, error) {
	defer s.lock(ctx)()

	list := []models.Notification{}
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		if filter.Category != "" && n.Category != filter.Category {
			continue
		}
		list = append(list, n)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})

	return window(list, filter.Limit, filter.Offset), nil
}

// MarkRead marks recipient notification read
func (s *Store) MarkRead(ctx context.Context, recipientID, id string) error {
	defer s.lock(ctx)()

	n, ok := s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return models.ErrDataNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

// MarkAllRead marks every recipient notification read and returns how many changed
func (s *Store) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	defer s.lock(ctx)()

	changed := 0
	for id, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

// DeleteNotification deletes recipient notification
func (s *Store) DeleteNotification(ctx context.Context, recipientID, id string) error {
	defer s.lock(ctx)()

	n, ok := s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return models.ErrDataNotFound
	}
	delete(s.notifications, id)
	return nil
}

// CountUnread returns number of unread recipient notifications
func (s *Store) CountUnread(ctx context.Context, recipientID string) (int, error) {
	defer s.lock(ctx)()

	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}
