package models

import "time"

// rating score bounds
const (
	MinScore = 1
	MaxScore = 5
)

// Scores is overall score with optional sub-scores
type Scores struct {
	Overall  int
	Delivery *int
	Quality  *int
	Pricing  *int
}

// Rating is rating of fulfilling actor for delivered order
type Rating struct {
	ID        string
	OrderID   string
	RaterID   string
	TargetID  string
	Scores    Scores
	Comment   string
	CreatedAt time.Time
}

// RatingStats is raw aggregate over target ratings
type RatingStats struct {
	Sum   int64
	Count int
}
