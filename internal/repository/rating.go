package repository

import (
	"context"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
)

const (
	insertRatingQuery = `
						INSERT INTO ratings (id, order_id, rater_id, target_id, score, delivery_score, quality_score,
						                     pricing_score, comment, created_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	selectRatingByOrderAndRaterQuery = `
						SELECT id, order_id, rater_id, target_id, score, delivery_score, quality_score, pricing_score,
						       comment, created_at
						FROM ratings
						WHERE order_id = $1 AND rater_id = $2
`
	selectRatingsByTargetQuery = `
						SELECT id, order_id, rater_id, target_id, score, delivery_score, quality_score, pricing_score,
						       comment, created_at
						FROM ratings
						WHERE target_id = $1
						ORDER BY created_at DESC
						LIMIT $2 OFFSET $3
`
	selectRatingStatsQuery = `
						SELECT COALESCE(SUM(score), 0), COUNT(*) FROM ratings
						WHERE target_id = $1
`
)

// RatingRepository implements RatingRepository interface
type RatingRepository struct {
	db *postgres.DB
}

// NewRatingRepository creates new RatingRepository instance
func NewRatingRepository(db *postgres.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func scanRating(row interface{ Scan(dest ...any) error }, r *models.Rating) error {
	return row.Scan(&r.ID, &r.OrderID, &r.RaterID, &r.TargetID, &r.Scores.Overall, &r.Scores.Delivery,
		&r.Scores.Quality, &r.Scores.Pricing, &r.Comment, &r.CreatedAt)
}

// CreateRating inserts new rating, ErrConflictData if order was already rated by rater
func (rr *RatingRepository) CreateRating(ctx context.Context, rating *models.Rating) error {
	_, err := rr.db.Exec(ctx, insertRatingQuery, rating.ID, rating.OrderID, rating.RaterID, rating.TargetID,
		rating.Scores.Overall, rating.Scores.Delivery, rating.Scores.Quality, rating.Scores.Pricing,
		rating.Comment, rating.CreatedAt)
	return translate(rr.db, "create rating", err)
}

// GetRatingByOrderAndRater returns rating for order by rater
func (rr *RatingRepository) GetRatingByOrderAndRater(ctx context.Context, orderID, raterID string) (*models.Rating, error) {
	rating := models.Rating{}
	if err := scanRating(rr.db.QueryRow(ctx, selectRatingByOrderAndRaterQuery, orderID, raterID), &rating); err != nil {
		return nil, translate(rr.db, "get rating", err)
	}
	return &rating, nil
}

// ListRatingsByTarget returns target ratings newest first
func (rr *RatingRepository) ListRatingsByTarget(ctx context.Context, targetID string, limit, offset int) ([]models.Rating, error) {
	rows, err := rr.db.Query(ctx, selectRatingsByTargetQuery, targetID, limitOrDefault(limit), max(offset, 0))
	if err != nil {
		return nil, translate(rr.db, "list ratings", err)
	}
	defer rows.Close()

	ratings := []models.Rating{}

	for rows.Next() {
		rating := models.Rating{}
		if err := scanRating(rows, &rating); err != nil {
			return nil, translate(rr.db, "scan rating", err)
		}
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(rr.db, "list ratings", err)
	}

	return ratings, nil
}

// RatingStats returns sum and count of all target ratings
func (rr *RatingRepository) RatingStats(ctx context.Context, targetID string) (models.RatingStats, error) {
	stats := models.RatingStats{}
	if err := rr.db.QueryRow(ctx, selectRatingStatsQuery, targetID).Scan(&stats.Sum, &stats.Count); err != nil {
		return models.RatingStats{}, translate(rr.db, "rating stats", err)
	}
	return stats, nil
}
