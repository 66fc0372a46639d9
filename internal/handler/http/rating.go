package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/service"
)

// RatingHandler represents HTTP handler for rating-related requests
type RatingHandler struct {
	svc RatingService
}

// NewRatingHandler creates new RatingHandler instance
func NewRatingHandler(svc RatingService) *RatingHandler {
	return &RatingHandler{svc: svc}
}

type ratingRequest struct {
	TargetID      string `json:"target_id"`
	Score         int    `json:"score"`
	DeliveryScore *int   `json:"delivery_score"`
	QualityScore  *int   `json:"quality_score"`
	PricingScore  *int   `json:"pricing_score"`
	Comment       string `json:"comment"`
}

type ratingResponse struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	RaterID       string `json:"rater_id"`
	TargetID      string `json:"target_id"`
	Score         int    `json:"score"`
	DeliveryScore *int   `json:"delivery_score,omitempty"`
	QualityScore  *int   `json:"quality_score,omitempty"`
	PricingScore  *int   `json:"pricing_score,omitempty"`
	Comment       string `json:"comment,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func newRatingResponse(r *models.Rating) ratingResponse {
	return ratingResponse{
		ID:            r.ID,
		OrderID:       r.OrderID,
		RaterID:       r.RaterID,
		TargetID:      r.TargetID,
		Score:         r.Scores.Overall,
		DeliveryScore: r.Scores.Delivery,
		QualityScore:  r.Scores.Quality,
		PricingScore:  r.Scores.Pricing,
		Comment:       r.Comment,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

// RateOrder rates fulfiller of delivered order
// 201 — оценка сохранена;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — пользователь не может оценить заказ;
// 404 — заказ не найден;
// 409 — заказ уже оценён;
// 422 — ошибка валидации.
func (rh *RatingHandler) RateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req ratingRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		rating, err := rh.svc.Submit(r.Context(), p, chi.URLParam(r, "orderID"), service.RatingRequest{
			TargetID: req.TargetID,
			Scores: models.Scores{
				Overall:  req.Score,
				Delivery: req.DeliveryScore,
				Quality:  req.QualityScore,
				Pricing:  req.PricingScore,
			},
			Comment: req.Comment,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newRatingResponse(rating))
	}
}

// OrderRating returns rating principal left for order
// 200 — оценка найдена;
// 404 — заказ не найден или ещё не оценён.
func (rh *RatingHandler) OrderRating() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		rating, err := rh.svc.GetForOrder(r.Context(), p, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newRatingResponse(rating))
	}
}
