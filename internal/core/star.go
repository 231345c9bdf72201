package core

import (
	"context"
	"time"
)

// Star is a published unsent-message artifact as seen by the core layer.
// Stars are immutable; the core only reads them to enrich thread requests.
type Star struct {
	ID              string
	Text            string
	Emotion         string
	EmotionScore    float64
	Lat             float64
	Lng             float64
	ConstellationID string
	CreatedAt       time.Time
}

// StarSource loads star records for thread-request delivery. Lookups run
// outside the hub loop so a slow store never stalls presence or
// matchmaking.
type StarSource interface {
	GetStar(ctx context.Context, id string) (*Star, error)
}
