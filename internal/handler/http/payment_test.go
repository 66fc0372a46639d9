package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rookgm/streetmart/internal/handler/http/mocks"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentHandler_RecordPayment(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
		wantLastFour   string
	}{
		{
			// 201 — платёж записан;
			name: "card_payment_return_201",
			body: `{"method":"card","status":"completed","transaction_id":"tx-1","card_number":"4111 1111 1111 1111"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Record(gomock.Any(), *customer, "o-1", models.PaymentInput{
					Method:        models.PaymentCard,
					Status:        models.PaymentCompleted,
					TransactionID: "tx-1",
					CardNumber:    "4111 1111 1111 1111",
				}).Return(&models.Payment{
					ID:           "p-1",
					OrderID:      "o-1",
					PayerID:      "c-1",
					Method:       models.PaymentCard,
					Amount:       decimal.RequireFromString("60.66"),
					Status:       models.PaymentCompleted,
					CardLastFour: "1111",
					CreatedAt:    time.Now(),
					UpdatedAt:    time.Now(),
				}, nil)
				return svcMock
			},
			wantStatusCode: http.StatusCreated,
			wantLastFour:   "1111",
		},
		{
			// 422 — неверный номер карты или способ оплаты.
			name: "bad_card_return_422",
			body: `{"method":"card","card_number":"4111 1111 1111 1112"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Record(gomock.Any(), gomock.Any(), "o-1", gomock.Any()).
					Return(nil, models.NewValidationError("card_number", "failed checksum"))
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			// 403 — пользователь не является заказчиком;
			name: "not_requester_return_403",
			body: `{"method":"cash"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Record(gomock.Any(), gomock.Any(), "o-1", gomock.Any()).
					Return(nil, models.NewAuthorizationError("pay for order"))
				return svcMock
			},
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/payments", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			NewPaymentHandler(tt.setup(t)).RecordPayment()(w, withRequestContext(req, customer, map[string]string{"orderID": "o-1"}))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantLastFour != "" {
				var got paymentResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				assert.Equal(t, tt.wantLastFour, got.CardLastFour)
			}
		})
	}
}

func TestPaymentHandler_SetPaymentStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockPaymentService(ctrl)
	svcMock.EXPECT().SetStatus(gomock.Any(), *vendor, "p-1", models.PaymentRefunded).
		Return(nil, models.NewValidationError("status", "pending payment can not be refunded"))

	req := httptest.NewRequest(http.MethodPut, "/api/payments/p-1/status", strings.NewReader(`{"status":"refunded"}`))
	w := httptest.NewRecorder()
	NewPaymentHandler(svcMock).SetPaymentStatus()(w, withRequestContext(req, vendor, map[string]string{"paymentID": "p-1"}))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}
