package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

var (
	customer = &models.Principal{ActorID: "c-1", Role: models.RoleCustomer}
	vendor   = &models.Principal{ActorID: "v-1", Role: models.RoleVendor}
)

// withRequestContext injects auth payload and chi URL params
func withRequestContext(req *http.Request, token *models.Principal, params map[string]string) *http.Request {
	ctx := context.WithValue(req.Context(), authPayloadKey, token)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)

	return req.WithContext(ctx)
}

func strPtr(s string) *string {
	return &s
}
