package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rookgm/streetmart/internal/logger"
	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RatingRequest is rating of order fulfiller
type RatingRequest struct {
	// TargetID defaults to order fulfiller when empty
	TargetID string
	Scores   models.Scores
	Comment  string
}

// RatingService is rating aggregator
type RatingService struct {
	base
	tx       Transactor
	ratings  RatingRepository
	orders   OrderRepository
	actors   ActorRepository
	events   EventRepository
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewRatingService creates new RatingService instance
func NewRatingService(tx Transactor, ratings RatingRepository, orders OrderRepository, actors ActorRepository,
	events EventRepository, notifier Notifier, m *metrics.Metrics, opts ...Option) *RatingService {
	return &RatingService{
		base:     newBase(opts),
		tx:       tx,
		ratings:  ratings,
		orders:   orders,
		actors:   actors,
		events:   events,
		notifier: notifier,
		metrics:  m,
	}
}

func validateScores(s models.Scores) error {
	check := func(field string, v int) error {
		if v < models.MinScore || v > models.MaxScore {
			return models.NewValidationError(field, fmt.Sprintf("must be between %d and %d", models.MinScore, models.MaxScore))
		}
		return nil
	}

	if err := check("score", s.Overall); err != nil {
		return err
	}
	for field, v := range map[string]*int{
		"delivery_score": s.Delivery,
		"quality_score":  s.Quality,
		"pricing_score":  s.Pricing,
	} {
		if v == nil {
			continue
		}
		if err := check(field, *v); err != nil {
			return err
		}
	}
	return nil
}

// Submit records rating of delivered order by its requester and recomputes target aggregate
func (rs *RatingService) Submit(ctx context.Context, p models.Principal, orderID string, req RatingRequest) (rating *models.Rating, err error) {
	ctx, span := rs.tracer.Start(ctx, "rating.submit", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	if !p.Can(models.CapRate) {
		return nil, models.NewAuthorizationError("rate order")
	}
	if err := validateScores(req.Scores); err != nil {
		return nil, err
	}

	err = rs.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := rs.orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsParty(p.ActorID) {
			return models.ErrDataNotFound
		}
		if order.RequesterID != p.ActorID {
			return models.NewAuthorizationError("rate order")
		}
		if order.Status != models.OrderStatusDelivered {
			return models.NewValidationError("order", "only delivered orders can be rated")
		}
		if order.FulfillerID == nil {
			return models.NewValidationError("order", "order has no fulfiller")
		}

		target := req.TargetID
		if target == "" {
			target = *order.FulfillerID
		}
		if target != *order.FulfillerID {
			return models.NewValidationError("target_id", "must be order fulfiller")
		}

		// serializes concurrent recomputes of the same target
		if err := rs.actors.LockActor(ctx, target); err != nil {
			return err
		}

		rating = &models.Rating{
			ID:        rs.newID(),
			OrderID:   order.ID,
			RaterID:   p.ActorID,
			TargetID:  target,
			Scores:    req.Scores,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: rs.now(),
		}
		if err := rs.ratings.CreateRating(ctx, rating); err != nil {
			return err
		}

		mean, count, err := rs.recompute(ctx, target)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{"score": rating.Scores.Overall, "target_id": target})
		if err != nil {
			return err
		}
		err = rs.events.AppendEvent(ctx, &models.OrderEvent{
			OrderID:    order.ID,
			Type:       models.EventRatingRecorded,
			ActorID:    p.ActorID,
			FromStatus: order.Status,
			ToStatus:   order.Status,
			Payload:    payload,
			CreatedAt:  rating.CreatedAt,
		})
		if err != nil {
			return err
		}

		_, err = rs.notifier.Emit(ctx, models.NotificationInput{
			RecipientID: target,
			Category:    models.CategorySystem,
			Topic:       models.EventRatingRecorded,
			Priority:    models.PriorityLow,
			Title:       "New rating",
			Message: fmt.Sprintf("You received %d/%d for order %s, average is now %s from %d ratings",
				rating.Scores.Overall, models.MaxScore, shortID(order.ID), mean.StringFixed(1), count),
			OrderID: &order.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	rs.metrics.RatingRecorded()
	logger.Log.Info("rating recorded",
		zap.String("order", orderID),
		zap.String("target", rating.TargetID),
		zap.Int("score", rating.Scores.Overall))

	return rating, nil
}

// Recompute rebuilds target aggregate from all of its ratings
func (rs *RatingService) Recompute(ctx context.Context, targetID string) (mean decimal.Decimal, count int, err error) {
	err = rs.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := rs.actors.LockActor(ctx, targetID); err != nil {
			return err
		}
		mean, count, err = rs.recompute(ctx, targetID)
		return err
	})
	return mean, count, err
}

// recompute must run with target actor locked
func (rs *RatingService) recompute(ctx context.Context, targetID string) (decimal.Decimal, int, error) {
	stats, err := rs.ratings.RatingStats(ctx, targetID)
	if err != nil {
		return decimal.Zero, 0, err
	}

	mean := MeanRating(stats)
	if err := rs.actors.UpdateActorRating(ctx, targetID, mean, stats.Count, rs.now()); err != nil {
		return decimal.Zero, 0, err
	}

	return mean, stats.Count, nil
}

// MeanRating returns mean score rounded to one decimal place, zero without ratings
func MeanRating(stats models.RatingStats) decimal.Decimal {
	if stats.Count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(stats.Sum).Div(decimal.NewFromInt(int64(stats.Count))).Round(1)
}

// ListForTarget returns ratings of actor newest first
func (rs *RatingService) ListForTarget(ctx context.Context, targetID string, limit, offset int) ([]models.Rating, error) {
	return rs.ratings.ListRatingsByTarget(ctx, targetID, limit, offset)
}

// GetForOrder returns rating principal left for order
func (rs *RatingService) GetForOrder(ctx context.Context, p models.Principal, orderID string) (*models.Rating, error) {
	order, err := rs.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(p.ActorID) {
		return nil, models.ErrDataNotFound
	}
	return rs.ratings.GetRatingByOrderAndRater(ctx, order.ID, p.ActorID)
}
