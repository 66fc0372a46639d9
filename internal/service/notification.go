package service

import (
	"context"
	"strings"

	"github.com/rookgm/streetmart/internal/models"
)

// NotificationService implements NotificationService interface
type NotificationService struct {
	base
	repo NotificationRepository
}

// NewNotificationService creates new NotificationService instance
func NewNotificationService(repo NotificationRepository, opts ...Option) *NotificationService {
	return &NotificationService{
		base: newBase(opts),
		repo: repo,
	}
}

// Emit creates notification for recipient
func (ns *NotificationService) Emit(ctx context.Context, in models.NotificationInput) (*models.Notification, error) {
	if in.RecipientID == "" {
		return nil, models.NewValidationError("recipient", "is required")
	}
	if !in.Category.Valid() {
		return nil, models.NewValidationError("category", "unknown category")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("title", "is required")
	}

	priority := in.Priority
	switch priority {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	case "":
		priority = models.PriorityMedium
	default:
		return nil, models.NewValidationError("priority", "unknown priority")
	}

	n := models.Notification{
		ID:             ns.newID(),
		RecipientID:    in.RecipientID,
		Category:       in.Category,
		Topic:          in.Topic,
		Priority:       priority,
		Title:          in.Title,
		Message:        in.Message,
		ActionRequired: in.ActionRequired,
		OrderID:        in.OrderID,
		CreatedAt:      ns.now(),
	}

	if err := ns.repo.CreateNotification(ctx, &n); err != nil {
		return nil, err
	}

	return &n, nil
}

// List returns notifications of principal
func (ns *NotificationService) List(ctx context.Context, p models.Principal, filter models.NotificationFilter) ([]models.Notification, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, models.NewValidationError("category", "unknown category")
	}
	return ns.repo.ListNotifications(ctx, p.ActorID, filter)
}

// UnreadCount returns number of unread notifications of principal
func (ns *NotificationService) UnreadCount(ctx context.Context, p models.Principal) (int, error) {
	return ns.repo.CountUnread(ctx, p.ActorID)
}

// MarkRead marks notification read. Notifications of other actors are not found.
func (ns *NotificationService) MarkRead(ctx context.Context, p models.Principal, id string) error {
	return ns.repo.MarkRead(ctx, p.ActorID, id)
}

// MarkAllRead marks every notification of principal read
func (ns *NotificationService) MarkAllRead(ctx context.Context, p models.Principal) (int, error) {
	return ns.repo.MarkAllRead(ctx, p.ActorID)
}

// Delete deletes notification of principal
func (ns *NotificationService) Delete(ctx context.Context, p models.Principal, id string) error {
	return ns.repo.DeleteNotification(ctx, p.ActorID, id)
}
