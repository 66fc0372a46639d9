package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/rookgm/streetmart/internal/handler/http/mocks"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOrder(status models.OrderStatus, at time.Time) *models.Order {
	return &models.Order{
		ID:          "o-1",
		RequesterID: "c-1",
		FulfillerID: strPtr("v-1"),
		Items: []models.OrderItem{
			{CatalogItemID: "i-1", Name: "Onion", Unit: "kg", Quantity: 3, UnitPrice: decimal.RequireFromString("20.22")},
		},
		Total:           decimal.RequireFromString("60.66"),
		Status:          status,
		DeliveryAddress: "Stall 4, Gandhi Road",
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func TestOrderHandler_SubmitOrder(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name           string
		token          *models.Principal
		body           string
		setup          func(t *testing.T) *mocks.MockOrderService
		wantStatusCode int
		wantError      string
	}{
		{
			// 201 — заказ создан;
			name:  "valid_request_return_201",
			token: customer,
			body:  `{"items":[{"item_id":"i-1","quantity":3}],"delivery":{"address":"Stall 4, Gandhi Road"}}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Submit(gomock.Any(), *customer, service.SubmitRequest{
					Items:          []models.OrderLine{{CatalogItemID: "i-1", Quantity: 3}},
					Delivery:       models.DeliveryInfo{Address: "Stall 4, Gandhi Road"},
					IdempotencyKey: "key-1",
				}).Return(testOrder(models.OrderStatusPending, now), nil)
				return svcMock
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			// 400 — неверный формат запроса;
			name:  "malformed_body_return_400",
			token: customer,
			body:  `{"items":`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      kindBadRequest,
		},
		{
			// 401 — пользователь не аутентифицирован;
			name: "unauthorized_request_return_401",
			body: `{}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      kindUnauthenticated,
		},
		{
			// 403 — роль не может размещать заказы;
			name:  "forbidden_request_return_403",
			token: &models.Principal{ActorID: "s-1", Role: models.RoleSupplier},
			body:  `{"items":[{"item_id":"i-1","quantity":3}]}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.NewAuthorizationError("place orders"))
				return svcMock
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      kindForbidden,
		},
		{
			// 409 — недостаточно товара;
			name:  "insufficient_stock_return_409",
			token: customer,
			body:  `{"items":[{"item_id":"i-1","quantity":30}]}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, &models.InsufficientStockError{ItemID: "i-1", Name: "Onion", Requested: 30, Available: 10})
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
			wantError:      kindInsufficientStock,
		},
		{
			// 422 — ошибка валидации.
			name:  "validation_error_return_422",
			token: customer,
			body:  `{"items":[]}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.NewValidationError("items", "at least one item is required"))
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      kindValidation,
		},
		{
			name:  "store_unavailable_return_503",
			token: customer,
			body:  `{"items":[{"item_id":"i-1","quantity":3}]}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.NewStoreError("create order", errors.New("connection refused")))
				return svcMock
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      kindStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal("cannot create request", zap.Error(err))
			}
			req.Header.Set(idempotencyKeyHeader, "key-1")

			w := httptest.NewRecorder()
			handler := NewOrderHandler(tt.setup(t))
			h := handler.SubmitOrder()
			h(w, withRequestContext(req, tt.token, nil))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantError != "" {
				var got errorResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				assert.Equal(t, tt.wantError, got.Error)
			}
		})
	}
}

func TestOrderHandler_SubmitOrderResponse(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockOrderService(ctrl)
	svcMock.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(testOrder(models.OrderStatusPending, now), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"items":[{"item_id":"i-1","quantity":3}],"delivery":{"address":"Stall 4, Gandhi Road"}}`))
	w := httptest.NewRecorder()
	NewOrderHandler(svcMock).SubmitOrder()(w, withRequestContext(req, customer, nil))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var got orderResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))

	want := orderResponse{
		ID:          "o-1",
		RequesterID: "c-1",
		FulfillerID: strPtr("v-1"),
		Items: []orderItemResponse{{
			ItemID:    "i-1",
			Name:      "Onion",
			Unit:      "kg",
			Quantity:  3,
			UnitPrice: decimal.RequireFromString("20.22"),
			LineTotal: decimal.RequireFromString("60.66"),
		}},
		Total:     decimal.RequireFromString("60.66"),
		Status:    models.OrderStatusPending,
		Address:   "Stall 4, Gandhi Road",
		CreatedAt: now.Format(time.RFC3339),
		UpdatedAt: now.Format(time.RFC3339),
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderHandler_SubmitVoiceOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockOrderService(ctrl)
	svcMock.EXPECT().SubmitVoice(gomock.Any(), *customer, service.VoiceSubmitRequest{
		Order: models.VoiceOrder{
			Transcript: "three kilo onion",
			Items:      []models.OrderLine{{CatalogItemID: "i-1", Quantity: 3}},
			Total:      decimal.RequireFromString("60.66"),
		},
		Delivery: models.DeliveryInfo{Address: "Stall 4"},
	}).DoAndReturn(func(_ any, _ models.Principal, req service.VoiceSubmitRequest) (*models.Order, error) {
		o := testOrder(models.OrderStatusPending, time.Now())
		o.VoiceOrder = true
		return o, nil
	})

	body := `{"transcript":"three kilo onion","items":[{"item_id":"i-1","quantity":3}],"total":"60.66","delivery":{"address":"Stall 4"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/voice", strings.NewReader(body))
	w := httptest.NewRecorder()
	NewOrderHandler(svcMock).SubmitVoiceOrder()(w, withRequestContext(req, customer, nil))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var got orderResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.True(t, got.Voice)
}

func TestOrderHandler_TransitionOrder(t *testing.T) {
	tests := []struct {
		name           string
		token          *models.Principal
		body           string
		err            error
		wantStatusCode int
		wantDetails    map[string]any
	}{
		{
			// 200 — статус изменён;
			name:           "valid_request_return_200",
			token:          vendor,
			body:           `{"status":"confirmed"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			// 403 — пользователь не может выполнить переход;
			name:           "requester_confirms_return_403",
			token:          customer,
			body:           `{"status":"confirmed"}`,
			err:            models.NewAuthorizationError("confirmed order"),
			wantStatusCode: http.StatusForbidden,
		},
		{
			// 404 — заказ не найден;
			name:           "not_party_return_404",
			token:          &models.Principal{ActorID: "c-2", Role: models.RoleCustomer},
			body:           `{"status":"cancelled"}`,
			err:            models.ErrDataNotFound,
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 409 — недопустимый переход;
			name:           "skipped_state_return_409",
			token:          vendor,
			body:           `{"status":"delivered"}`,
			err:            &models.InvalidTransitionError{From: models.OrderStatusPending, To: models.OrderStatusDelivered},
			wantStatusCode: http.StatusConflict,
			wantDetails:    map[string]any{"from": "pending", "to": "delivered"},
		},
		{
			// 422 — неизвестный статус.
			name:           "unknown_status_return_422",
			token:          vendor,
			body:           `{"status":"lost"}`,
			err:            models.NewValidationError("status", "unknown order status"),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantDetails:    map[string]any{"field": "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target struct {
				Status models.OrderStatus `json:"status"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &target))

			ctrl := gomock.NewController(t)
			svcMock := mocks.NewMockOrderService(ctrl)
			var order *models.Order
			if tt.err == nil {
				order = testOrder(target.Status, time.Now())
			}
			svcMock.EXPECT().Transition(gomock.Any(), *tt.token, "o-1", target.Status).Return(order, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/transition", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			NewOrderHandler(svcMock).TransitionOrder()(w, withRequestContext(req, tt.token, map[string]string{"orderID": "o-1"}))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantDetails != nil {
				var got errorResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				if diff := cmp.Diff(tt.wantDetails, got.Details); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	tests := []struct {
		name           string
		token          *models.Principal
		query          string
		setup          func(t *testing.T) *mocks.MockOrderService
		wantStatusCode int
		wantLen        int
	}{
		{
			// 200 — успешная обработка запроса;
			name:  "fulfiller_view_return_200",
			token: vendor,
			query: "?view=fulfiller&status=pending&limit=10&offset=5",
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().List(gomock.Any(), *vendor, service.ListRequest{
					View:   models.OrderViewFulfiller,
					Status: models.OrderStatusPending,
					Limit:  10,
					Offset: 5,
				}).Return([]models.Order{*testOrder(models.OrderStatusPending, time.Now())}, nil)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantLen:        1,
		},
		{
			name:  "empty_list_return_200",
			token: customer,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 422 — неверные параметры запроса.
			name:  "bad_limit_return_422",
			token: customer,
			query: "?limit=ten",
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			// 500 — внутренняя ошибка сервера.
			name:  "internal_error_return_500",
			token: customer,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders"+tt.query, nil)
			w := httptest.NewRecorder()
			NewOrderHandler(tt.setup(t)).ListOrders()(w, withRequestContext(req, tt.token, nil))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantStatusCode == http.StatusOK {
				resBody, err := io.ReadAll(res.Body)
				require.NoError(t, err)

				var got []orderResponse
				require.NoError(t, json.Unmarshal(resBody, &got))
				assert.Len(t, got, tt.wantLen)
			}
		})
	}
}

func TestOrderHandler_OrderEvents(t *testing.T) {
	at := time.Now().Truncate(time.Second)

	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockOrderService(ctrl)
	svcMock.EXPECT().History(gomock.Any(), *customer, "o-1").Return([]models.OrderEvent{
		{ID: 1, OrderID: "o-1", Type: models.EventOrderSubmitted, ActorID: "c-1", ToStatus: models.OrderStatusPending, CreatedAt: at},
		{ID: 2, OrderID: "o-1", Type: "order.confirmed", ActorID: "v-1",
			FromStatus: models.OrderStatusPending, ToStatus: models.OrderStatusConfirmed, CreatedAt: at},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o-1/events", nil)
	w := httptest.NewRecorder()
	NewOrderHandler(svcMock).OrderEvents()(w, withRequestContext(req, customer, map[string]string{"orderID": "o-1"}))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got []orderEventResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))

	want := []orderEventResponse{
		{ID: 1, Type: "order.submitted", ActorID: "c-1", To: "pending", CreatedAt: at.Format(time.RFC3339)},
		{ID: 2, Type: "order.confirmed", ActorID: "v-1", From: "pending", To: "confirmed", CreatedAt: at.Format(time.RFC3339)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
