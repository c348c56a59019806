package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	ID        string
	EventID   string
	UserID    string
	Rating    int
	Comment   *string
	CreatedAt time.Time
}

// ClampRating bounds a rating for star rendering.
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}
