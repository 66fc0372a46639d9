package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rookgm/streetmart/internal/logger"
	"github.com/rookgm/streetmart/internal/models"
	"go.uber.org/zap"
)

// error kinds of response body
const (
	kindBadRequest         = "bad_request"
	kindUnauthenticated    = "unauthenticated"
	kindValidation         = "validation_error"
	kindInsufficientStock  = "insufficient_stock"
	kindInvalidTransition  = "invalid_transition"
	kindForbidden          = "forbidden"
	kindNotFound           = "not_found"
	kindConflict           = "conflict"
	kindStoreUnavailable   = "store_unavailable"
	kindInternal           = "internal_error"
	kindInvalidCredentials = "invalid_credentials"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeJSON writes v with status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Debug("encode response", zap.Error(err))
	}
}

// writeError maps err kind to status code and error body
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — нет прав на операцию;
// 404 — сущность не найдена или недоступна;
// 409 — недостаточно товара, недопустимый переход или конфликт данных;
// 422 — ошибка валидации;
// 503 — хранилище недоступно;
// 500 — внутренняя ошибка сервера.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		stockErr      *models.InsufficientStockError
		transitionErr *models.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		details := map[string]any{}
		if validationErr.Field != "" {
			details["field"] = validationErr.Field
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   kindValidation,
			Message: validationErr.Error(),
			Details: details,
		})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   kindInsufficientStock,
			Message: stockErr.Error(),
			Details: map[string]any{
				"item_id":   stockErr.ItemID,
				"name":      stockErr.Name,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			},
		})
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   kindInvalidTransition,
			Message: transitionErr.Error(),
			Details: map[string]any{
				"from": transitionErr.From,
				"to":   transitionErr.To,
			},
		})
	case errors.Is(err, models.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: kindForbidden, Message: err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: kindInvalidCredentials, Message: err.Error()})
	case errors.Is(err, models.ErrDataNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: kindNotFound, Message: "not found"})
	case errors.Is(err, models.ErrConflictData):
		writeJSON(w, http.StatusConflict, errorResponse{Error: kindConflict, Message: err.Error()})
	case errors.Is(err, models.ErrStore):
		logger.Log.Error("store error", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   kindStoreUnavailable,
			Message: "storage is temporarily unavailable, retry later",
		})
	default:
		logger.Log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: kindInternal, Message: "internal error"})
	}
}

// badRequest reports malformed request
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: kindBadRequest, Message: message})
}

// decodeJSON decodes request body into v, reporting 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "malformed JSON body")
		return false
	}
	return true
}

// queryInt parses optional integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name, "must be integer")
	}
	return v, nil
}

// queryBool parses optional boolean query parameter
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, models.NewValidationError(name, "must be boolean")
	}
	return v, nil
}

// page parses limit and offset query parameters
func page(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
