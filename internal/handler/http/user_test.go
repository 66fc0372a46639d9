package handler

import (
	"encoding/json"
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
)

func testActor(at time.Time) *models.Actor {
	return &models.Actor{
		ID:           "v-1",
		Login:        "ravi",
		Role:         models.RoleVendor,
		DisplayName:  "Ravi",
		BusinessName: "Ravi Chaat",
		Phone:        "+91 98450 00000",
		Address:      "Stall 4, Gandhi Road",
		City:         "Pune",
		Rating:       decimal.RequireFromString("4.5"),
		TotalRatings: 2,
		IsActive:     true,
		CreatedAt:    at,
	}
}

func TestUserHandler_RegisterUser(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(t *testing.T) *mocks.MockActorService
		wantStatusCode int
		wantToken      bool
	}{
		{
			// 200 — пользователь успешно зарегистрирован и аутентифицирован;
			name: "valid_request_return_200",
			body: `{"login":"ravi","password":"secret","role":"vendor","display_name":"Ravi"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().Register(gomock.Any(), service.RegisterRequest{
					Login:       "ravi",
					Password:    "secret",
					Role:        models.RoleVendor,
					DisplayName: "Ravi",
				}).Return(testActor(time.Now()), "token", nil)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantToken:      true,
		},
		{
			// 400 — неверный формат запроса;
			name: "malformed_body_return_400",
			body: `login=ravi`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 409 — логин уже занят;
			name: "login_taken_return_409",
			body: `{"login":"ravi","password":"secret","role":"vendor"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, "", models.ErrConflictData)
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			// 422 — ошибка валидации;
			name: "unknown_role_return_422",
			body: `{"login":"ravi","password":"secret","role":"admin"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, "", models.NewValidationError("role", "unknown role"))
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			NewUserHandler(tt.setup(t), nil).RegisterUser()(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantToken {
				assert.Equal(t, "Bearer token", res.Header.Get("Authorization"))
				require.Len(t, res.Cookies(), 1)
				assert.Equal(t, authCookieName, res.Cookies()[0].Name)
			}
		})
	}
}

func TestUserHandler_LoginUser(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(t *testing.T) *mocks.MockActorService
		wantStatusCode int
	}{
		{
			// 200 — пользователь успешно аутентифицирован;
			name: "valid_request_return_200",
			body: `{"login":"ravi","password":"secret"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().Login(gomock.Any(), "ravi", "secret").Return("token", nil)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 400 — неверный формат запроса;
			name: "empty_password_return_400",
			body: `{"login":"ravi"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 401 — неверная пара логин/пароль;
			name: "wrong_password_return_401",
			body: `{"login":"ravi","password":"wrong"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().Login(gomock.Any(), "ravi", "wrong").Return("", models.ErrInvalidCredentials)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			NewUserHandler(tt.setup(t), nil).LoginUser()(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}

func TestUserHandler_PublicProfile(t *testing.T) {
	at := time.Now().Truncate(time.Second)

	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockActorService(ctrl)
	svcMock.EXPECT().PublicProfile(gomock.Any(), "v-1").Return(testActor(at), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/actors/v-1", nil)
	w := httptest.NewRecorder()
	NewUserHandler(svcMock, nil).PublicProfile()(w, withRequestContext(req, nil, map[string]string{"actorID": "v-1"}))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got actorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))

	// login and address stay private
	want := actorResponse{
		ID:           "v-1",
		Role:         models.RoleVendor,
		DisplayName:  "Ravi",
		BusinessName: "Ravi Chaat",
		Phone:        "+91 98450 00000",
		City:         "Pune",
		Rating:       decimal.RequireFromString("4.5"),
		TotalRatings: 2,
		CreatedAt:    at.Format(time.RFC3339),
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUserHandler_Profile(t *testing.T) {
	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockActorService(ctrl)
	svcMock.EXPECT().Profile(gomock.Any(), *vendor).Return(testActor(time.Now()), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	w := httptest.NewRecorder()
	NewUserHandler(svcMock, nil).Profile()(w, withRequestContext(req, vendor, nil))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got actorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, "ravi", got.Login)
	assert.Equal(t, "Stall 4, Gandhi Road", got.Address)
}

func TestUserHandler_ActorRatings(t *testing.T) {
	ctrl := gomock.NewController(t)
	ratingsMock := mocks.NewMockRatingService(ctrl)
	delivery := 4
	ratingsMock.EXPECT().ListForTarget(gomock.Any(), "v-1", 10, 0).Return([]models.Rating{
		{ID: "r-1", OrderID: "o-1", RaterID: "c-1", TargetID: "v-1", Scores: models.Scores{Overall: 5, Delivery: &delivery}},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/actors/v-1/ratings?limit=10", nil)
	w := httptest.NewRecorder()
	NewUserHandler(nil, ratingsMock).ActorRatings()(w, withRequestContext(req, nil, map[string]string{"actorID": "v-1"}))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got []ratingResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Score)
	require.NotNil(t, got[0].DeliveryScore)
	assert.Equal(t, 4, *got[0].DeliveryScore)
	assert.Nil(t, got[0].QualityScore)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	tests := []struct {
		name           string
		token          *models.Principal
		body           string
		setup          func(t *testing.T) *mocks.MockActorService
		wantStatusCode int
	}{
		{
			// 200 — профиль обновлён;
			name:  "valid_request_return_200",
			token: vendor,
			body:  `{"display_name":"Ravi","business_name":"Ravi Chaat","phone":"+91 98450 00000","address":"Stall 4, Gandhi Road","city":"Pune"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().UpdateProfile(gomock.Any(), *vendor, models.ProfileUpdate{
					DisplayName:  "Ravi",
					BusinessName: "Ravi Chaat",
					Phone:        "+91 98450 00000",
					Address:      "Stall 4, Gandhi Road",
					City:         "Pune",
				}).Return(testActor(time.Now()), nil)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 400 — неверный формат запроса;
			name:  "malformed_body_return_400",
			token: vendor,
			body:  `{"display_name":`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().UpdateProfile(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 401 — пользователь не аутентифицирован;
			name: "unauthorized_request_return_401",
			body: `{"display_name":"Ravi"}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().UpdateProfile(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			// 422 — ошибка валидации.
			name:  "empty_display_name_return_422",
			token: vendor,
			body:  `{"display_name":""}`,
			setup: func(t *testing.T) *mocks.MockActorService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockActorService(ctrl)
				svcMock.EXPECT().UpdateProfile(gomock.Any(), *vendor, models.ProfileUpdate{}).
					Return(nil, models.NewValidationError("display_name", "is required"))
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/user/profile", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			NewUserHandler(tt.setup(t), nil).UpdateProfile()(w, withRequestContext(req, tt.token, nil))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}

func TestUserHandler_ListActors(t *testing.T) {
	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockActorService(ctrl)
	svcMock.EXPECT().ListActors(gomock.Any(), models.ActorFilter{Role: models.RoleVendor, City: "Pune", Limit: 5}).
		Return([]models.Actor{*testActor(time.Now())}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/actors?role=vendor&city=Pune&limit=5", nil)
	w := httptest.NewRecorder()
	NewUserHandler(svcMock, nil).ListActors()(w, withRequestContext(req, nil, nil))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got []actorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "v-1", got[0].ID)
	// directory entries are public profiles
	assert.Empty(t, got[0].Login)
	assert.Empty(t, got[0].Address)
}
