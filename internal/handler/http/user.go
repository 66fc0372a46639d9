package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/shopspring/decimal"
)

// UserHandler represents HTTP handler for actor-related requests
type UserHandler struct {
	svc     ActorService
	ratings RatingService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc ActorService, ratings RatingService) *UserHandler {
	return &UserHandler{
		svc:     svc,
		ratings: ratings,
	}
}

type registerRequest struct {
	Login        string `json:"login"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DisplayName  string `json:"display_name"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
}

type profileRequest struct {
	DisplayName  string `json:"display_name"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type actorResponse struct {
	ID           string          `json:"id"`
	Login        string          `json:"login,omitempty"`
	Role         models.Role     `json:"role"`
	DisplayName  string          `json:"display_name"`
	BusinessName string          `json:"business_name,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Address      string          `json:"address,omitempty"`
	City         string          `json:"city,omitempty"`
	Rating       decimal.Decimal `json:"rating"`
	TotalRatings int             `json:"total_ratings"`
	CreatedAt    string          `json:"created_at"`
}

func newActorResponse(a *models.Actor, private bool) actorResponse {
	resp := actorResponse{
		ID:           a.ID,
		Role:         a.Role,
		DisplayName:  a.DisplayName,
		BusinessName: a.BusinessName,
		Phone:        a.Phone,
		City:         a.City,
		Rating:       a.Rating,
		TotalRatings: a.TotalRatings,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
	if private {
		resp.Login = a.Login
		resp.Address = a.Address
	}
	return resp
}

// setAuthToken passes token in cookie and header
func setAuthToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Authorization", "Bearer "+token)
}

// RegisterUser registers new actor and authenticates it
// 200 — пользователь успешно зарегистрирован и аутентифицирован;
// 400 — неверный формат запроса;
// 409 — логин уже занят;
// 422 — ошибка валидации;
// 500 — внутренняя ошибка сервера.
func (uh *UserHandler) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		actor, token, err := uh.svc.Register(r.Context(), service.RegisterRequest{
			Login:        req.Login,
			Password:     req.Password,
			Role:         models.Role(req.Role),
			DisplayName:  req.DisplayName,
			BusinessName: req.BusinessName,
			Phone:        req.Phone,
			Address:      req.Address,
			City:         req.City,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		setAuthToken(w, token)
		writeJSON(w, http.StatusOK, newActorResponse(actor, true))
	}
}

// LoginUser authenticates actor
// 200 — пользователь успешно аутентифицирован;
// 400 — неверный формат запроса;
// 401 — неверная пара логин/пароль;
// 500 — внутренняя ошибка сервера.
func (uh *UserHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Login == "" || req.Password == "" {
			badRequest(w, "login and password are required")
			return
		}

		token, err := uh.svc.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		setAuthToken(w, token)
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

// Profile returns profile of authenticated actor
func (uh *UserHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		actor, err := uh.svc.Profile(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newActorResponse(actor, true))
	}
}

// UpdateProfile replaces editable profile fields of authenticated actor
// 200 — профиль обновлён;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 422 — ошибка валидации.
func (uh *UserHandler) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req profileRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		actor, err := uh.svc.UpdateProfile(r.Context(), p, models.ProfileUpdate{
			DisplayName:  req.DisplayName,
			BusinessName: req.BusinessName,
			Phone:        req.Phone,
			Address:      req.Address,
			City:         req.City,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newActorResponse(actor, true))
	}
}

// ListActors returns active actors best rated first
func (uh *UserHandler) ListActors() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := page(r)
		if err != nil {
			writeError(w, err)
			return
		}

		actors, err := uh.svc.ListActors(r.Context(), models.ActorFilter{
			Role:   models.Role(r.URL.Query().Get("role")),
			City:   r.URL.Query().Get("city"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]actorResponse, 0, len(actors))
		for _, actor := range actors {
			resp = append(resp, newActorResponse(&actor, false))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// PublicProfile returns public profile of actor
func (uh *UserHandler) PublicProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := uh.svc.PublicProfile(r.Context(), chi.URLParam(r, "actorID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newActorResponse(actor, false))
	}
}

// ActorRatings returns ratings received by actor
func (uh *UserHandler) ActorRatings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := page(r)
		if err != nil {
			writeError(w, err)
			return
		}

		ratings, err := uh.ratings.ListForTarget(r.Context(), chi.URLParam(r, "actorID"), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]ratingResponse, 0, len(ratings))
		for _, rating := range ratings {
			resp = append(resp, newRatingResponse(&rating))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
