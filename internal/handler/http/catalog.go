package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/shopspring/decimal"
)

// CatalogHandler represents HTTP handler for catalog-related requests
type CatalogHandler struct {
	svc CatalogService
}

// NewCatalogHandler creates new CatalogHandler instance
func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type catalogItemRequest struct {
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	MinOrderQuantity  int             `json:"min_order_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type catalogItemResponse struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	Name              string          `json:"name"`
	Category          string          `json:"category,omitempty"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	MinOrderQuantity  int             `json:"min_order_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Available         bool            `json:"available"`
	UpdatedAt         string          `json:"updated_at"`
}

func newCatalogItemResponse(item *models.CatalogItem) catalogItemResponse {
	return catalogItemResponse{
		ID:                item.ID,
		OwnerID:           item.OwnerID,
		Name:              item.Name,
		Category:          item.Category,
		Unit:              item.Unit,
		Price:             item.Price,
		Stock:             item.Stock,
		MinOrderQuantity:  item.MinOrderQuantity,
		LowStockThreshold: item.LowStockThreshold,
		Available:         item.Available(),
		UpdatedAt:         item.UpdatedAt.Format(time.RFC3339),
	}
}

func catalogItemsResponse(items []models.CatalogItem) []catalogItemResponse {
	resp := make([]catalogItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, newCatalogItemResponse(&item))
	}
	return resp
}

// catalogFilter parses listing query parameters
func catalogFilter(r *http.Request) (models.CatalogFilter, error) {
	q := r.URL.Query()
	filter := models.CatalogFilter{
		OwnerID:  q.Get("owner"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
	}

	var err error
	if filter.Limit, filter.Offset, err = page(r); err != nil {
		return filter, err
	}
	if filter.IncludeUnavailable, err = queryBool(r, "include_unavailable"); err != nil {
		return filter, err
	}
	if raw := q.Get("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, models.NewValidationError("max_price", "must be decimal")
		}
		filter.MaxPrice = &price
	}

	return filter, nil
}

// ListCatalog returns available catalog items
func (ch *CatalogHandler) ListCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := catalogFilter(r)
		if err != nil {
			writeError(w, err)
			return
		}

		items, err := ch.svc.ListAvailable(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, catalogItemsResponse(items))
	}
}

// ListOwnCatalog returns all items of authenticated actor
func (ch *CatalogHandler) ListOwnCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		filter, err := catalogFilter(r)
		if err != nil {
			writeError(w, err)
			return
		}

		items, err := ch.svc.ListOwned(r.Context(), p, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, catalogItemsResponse(items))
	}
}

// GetCatalogItem returns catalog item
func (ch *CatalogHandler) GetCatalogItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := ch.svc.GetItem(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newCatalogItemResponse(item))
	}
}

// CreateCatalogItem creates catalog item of authenticated actor
// 201 — товар создан;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — роль не может вести каталог;
// 422 — ошибка валидации.
func (ch *CatalogHandler) CreateCatalogItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req catalogItemRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		item, err := ch.svc.CreateItem(r.Context(), p, service.CatalogItemInput{
			Name:              req.Name,
			Category:          req.Category,
			Unit:              req.Unit,
			Price:             req.Price,
			Stock:             req.Stock,
			MinOrderQuantity:  req.MinOrderQuantity,
			LowStockThreshold: req.LowStockThreshold,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newCatalogItemResponse(item))
	}
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

// SetStock sets stock of owned item
func (ch *CatalogHandler) SetStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req stockRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Stock == nil {
			writeError(w, models.NewValidationError("stock", "is required"))
			return
		}

		item, err := ch.svc.SetStock(r.Context(), p, chi.URLParam(r, "itemID"), *req.Stock)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newCatalogItemResponse(item))
	}
}

type priceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

// SetPrice sets price of owned item
func (ch *CatalogHandler) SetPrice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req priceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Price == nil {
			writeError(w, models.NewValidationError("price", "is required"))
			return
		}

		item, err := ch.svc.SetPrice(r.Context(), p, chi.URLParam(r, "itemID"), *req.Price)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newCatalogItemResponse(item))
	}
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

// SetAvailability soft-disables or re-enables owned item
func (ch *CatalogHandler) SetAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req availabilityRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Available == nil {
			writeError(w, models.NewValidationError("available", "is required"))
			return
		}

		item, err := ch.svc.SetAvailability(r.Context(), p, chi.URLParam(r, "itemID"), *req.Available)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newCatalogItemResponse(item))
	}
}
