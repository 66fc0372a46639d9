package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rookgm/streetmart/internal/models"
)

type contextKey string

const (
	authPayloadKey contextKey = "auth_payload"
	authCookieName            = "auth_token"
)

// TokenService verifies auth tokens
type TokenService interface {
	VerifyToken(tokenString string) (*models.Principal, error)
}

// tokenFromRequest returns token from auth cookie or Authorization header
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(authCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	return ""
}

// AuthMiddleware gets the token from the cookie or bearer header and passes its principal to the context
func AuthMiddleware(ts TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: kindUnauthenticated, Message: "missing auth token"})
				return
			}

			payload, err := ts.VerifyToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: kindUnauthenticated, Message: "unauthorized"})
				return
			}

			ctx := context.WithValue(r.Context(), authPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getAuthPayload extracts authorization token payload from context
func getAuthPayload(ctx context.Context, key contextKey) (*models.Principal, bool) {
	payload, ok := ctx.Value(key).(*models.Principal)
	return payload, ok && payload != nil
}

// principal returns caller principal or writes 401
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	payload, ok := getAuthPayload(r.Context(), authPayloadKey)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: kindUnauthenticated, Message: "unauthorized"})
		return models.Principal{}, false
	}
	return *payload, true
}
