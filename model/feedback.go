package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a thumbs up/down judgement on one recommendation.
type Rating int

const (
	RatingPositive Rating = 1
	RatingNegative Rating = -1
)

// FeedbackEntry is one human judgement on a recommended person.
// Entries are append-only: once written they are never mutated or deleted.
type FeedbackEntry struct {
	ID            uuid.UUID `json:"id"`
	Query         string    `json:"query"`
	RecommendedID string    `json:"recommended_id"`
	Rating        Rating    `json:"rating"`
	Reason        string    `json:"reason,omitempty"` // derived from the recommendation rationale
	Comment       string    `json:"comment,omitempty"`
	Timestamp     time.Time `json:"timestamp"` // UTC, serialized as ISO-8601
}

// NewFeedbackEntry stamps a new entry with an ID and the current UTC time.
func NewFeedbackEntry(query, recommendedID string, rating Rating, reason, comment string) *FeedbackEntry {
	return &FeedbackEntry{
		ID:            uuid.New(),
		Query:         query,
		RecommendedID: recommendedID,
		Rating:        rating,
		Reason:        reason,
		Comment:       comment,
		Timestamp:     time.Now().UTC(),
	}
}
