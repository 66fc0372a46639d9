package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rookgm/streetmart/internal/handler/http/mocks"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandler_ListNotifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockNotificationService(ctrl)
	svcMock.EXPECT().List(gomock.Any(), *vendor, models.NotificationFilter{
		UnreadOnly: true,
		Category:   models.CategoryOrder,
		Limit:      5,
	}).Return([]models.Notification{
		{
			ID:             "n-1",
			RecipientID:    "v-1",
			Category:       models.CategoryOrder,
			Topic:          models.TopicOrderSubmitted,
			Priority:       models.PriorityHigh,
			Title:          "New order",
			Message:        "Order #o-1 placed",
			ActionRequired: true,
			OrderID:        strPtr("o-1"),
			CreatedAt:      time.Now(),
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?unread=true&category=order&limit=5", nil)
	w := httptest.NewRecorder()
	NewNotificationHandler(svcMock).ListNotifications()(w, withRequestContext(req, vendor, nil))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got []notificationResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "order.submitted", got[0].Topic)
	assert.True(t, got[0].ActionRequired)
	assert.False(t, got[0].Read)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatusCode int
	}{
		{
			// 204 — уведомление прочитано;
			name:           "own_notification_return_204",
			wantStatusCode: http.StatusNoContent,
		},
		{
			// 404 — уведомление не найдено.
			name:           "foreign_notification_return_404",
			err:            models.ErrDataNotFound,
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svcMock := mocks.NewMockNotificationService(ctrl)
			svcMock.EXPECT().MarkRead(gomock.Any(), *customer, "n-1").Return(tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/notifications/n-1/read", nil)
			w := httptest.NewRecorder()
			NewNotificationHandler(svcMock).MarkRead()(w, withRequestContext(req, customer, map[string]string{"notificationID": "n-1"}))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}

func TestNotificationHandler_Counters(t *testing.T) {
	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockNotificationService(ctrl)
	gomock.InOrder(
		svcMock.EXPECT().UnreadCount(gomock.Any(), *customer).Return(3, nil),
		svcMock.EXPECT().MarkAllRead(gomock.Any(), *customer).Return(3, nil),
	)
	h := NewNotificationHandler(svcMock)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil)
	w := httptest.NewRecorder()
	h.UnreadCount()(w, withRequestContext(req, customer, nil))

	var unread unreadCountResponse
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&unread))
	assert.Equal(t, 3, unread.Unread)

	req = httptest.NewRequest(http.MethodPost, "/api/notifications/read-all", nil)
	w = httptest.NewRecorder()
	h.MarkAllRead()(w, withRequestContext(req, customer, nil))

	var updated markAllReadResponse
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&updated))
	assert.Equal(t, 3, updated.Updated)
}
