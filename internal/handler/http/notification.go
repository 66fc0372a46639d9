package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/streetmart/internal/models"
)

// NotificationHandler represents HTTP handler for inbox requests
type NotificationHandler struct {
	svc NotificationService
}

// NewNotificationHandler creates new NotificationHandler instance
func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type notificationResponse struct {
	ID             string                      `json:"id"`
	Category       models.NotificationCategory `json:"category"`
	Topic          string                      `json:"topic"`
	Priority       models.Priority             `json:"priority"`
	Title          string                      `json:"title"`
	Message        string                      `json:"message"`
	Read           bool                        `json:"read"`
	ActionRequired bool                        `json:"action_required"`
	OrderID        *string                     `json:"order_id,omitempty"`
	CreatedAt      string                      `json:"created_at"`
}

type unreadCountResponse struct {
	Unread int `json:"unread"`
}

type markAllReadResponse struct {
	Updated int `json:"updated"`
}

// ListNotifications returns inbox of authenticated actor, newest first
// 200 — успешная обработка запроса;
// 401 — пользователь не аутентифицирован;
// 422 — неверные параметры запроса.
func (nh *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		filter := models.NotificationFilter{
			Category: models.NotificationCategory(r.URL.Query().Get("category")),
		}
		var err error
		if filter.UnreadOnly, err = queryBool(r, "unread"); err != nil {
			writeError(w, err)
			return
		}
		if filter.Limit, filter.Offset, err = page(r); err != nil {
			writeError(w, err)
			return
		}

		list, err := nh.svc.List(r.Context(), p, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]notificationResponse, 0, len(list))
		for _, n := range list {
			resp = append(resp, notificationResponse{
				ID:             n.ID,
				Category:       n.Category,
				Topic:          n.Topic,
				Priority:       n.Priority,
				Title:          n.Title,
				Message:        n.Message,
				Read:           n.Read,
				ActionRequired: n.ActionRequired,
				OrderID:        n.OrderID,
				CreatedAt:      n.CreatedAt.Format(time.RFC3339),
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// UnreadCount returns number of unread notifications
func (nh *NotificationHandler) UnreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		n, err := nh.svc.UnreadCount(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, unreadCountResponse{Unread: n})
	}
}

// MarkRead marks own notification as read
// 204 — уведомление прочитано;
// 401 — пользователь не аутентифицирован;
// 404 — уведомление не найдено.
func (nh *NotificationHandler) MarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		if err := nh.svc.MarkRead(r.Context(), p, chi.URLParam(r, "notificationID")); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// MarkAllRead marks whole inbox as read
func (nh *NotificationHandler) MarkAllRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		n, err := nh.svc.MarkAllRead(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, markAllReadResponse{Updated: n})
	}
}

// DeleteNotification removes own notification
func (nh *NotificationHandler) DeleteNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		if err := nh.svc.Delete(r.Context(), p, chi.URLParam(r, "notificationID")); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
