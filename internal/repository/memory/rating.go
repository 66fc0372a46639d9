package memory

import (
	"context"
	"sort"

	"github.com/rookgm/streetmart/internal/models"
)

// CreateRating stores rating, ErrConflictData if order was already rated by rater
func (s *Store) CreateRating(ctx context.Context, rating *models.Rating) error {
	defer s.lock(ctx)()

	for _, r := range s.ratings {
		if r.OrderID == rating.OrderID && r.RaterID == rating.RaterID {
			return models.ErrConflictData
		}
	}
	if _, ok := s.ratings[rating.ID]; ok {
		return models.ErrConflictData
	}

	s.ratings[rating.ID] = *rating
	return nil
}

// GetRatingByOrderAndRater returns rating for order by rater
func (s *Store) GetRatingByOrderAndRater(ctx context.Context, orderID, raterID string) (*models.Rating, error) {
	defer s.lock(ctx)()

	for _, r := range s.ratings {
		if r.OrderID == orderID && r.RaterID == raterID {
			return &r, nil
		}
	}
	return nil, models.ErrDataNotFound
}

// ListRatingsByTarget returns target ratings newest first
func (s *Store) ListRatingsByTarget(ctx context.Context, targetID string, limit, offset int) ([]models.Rating, error) {
	defer s.lock(ctx)()

	ratings := []models.Rating{}
	for _, r := range s.ratings {
		if r.TargetID == targetID {
			ratings = append(ratings, r)
		}
	}

	sort.Slice(ratings, func(i, j int) bool {
		if !ratings[i].CreatedAt.Equal(ratings[j].CreatedAt) {
			return ratings[i].CreatedAt.After(ratings[j].CreatedAt)
		}
		return ratings[i].ID < ratings[j].ID
	})

	return window(ratings, limit, offset), nil
}

// RatingStats returns sum and count of all target ratings
func (s *Store) RatingStats(ctx context.Context, targetID string) (models.RatingStats, error) {
	defer s.lock(ctx)()

	stats := models.RatingStats{}
	for _, r := range s.ratings {
		if r.TargetID == targetID {
			stats.Sum += int64(r.Scores.Overall)
			stats.Count++
		}
	}
	return stats, nil
}
