package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Star is a published unsent-message artifact. Stars are immutable once
// created; presence ("is the star online?") is tracked by the core and
// never touches this layer.
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

// Store persists stars. Implementations must be safe for concurrent use.
type Store interface {
	// CreateStar inserts a new star and returns the stored record.
	CreateStar(ctx context.Context, star *Star) (*Star, error)
	// GetStar retrieves a star by ID. Returns ErrNotFound if absent.
	GetStar(ctx context.Context, id string) (*Star, error)
	// ListStars returns all stars, newest first.
	ListStars(ctx context.Context) ([]Star, error)
	// ListStarsByEmotion returns all stars with the given emotion tag,
	// newest first.
	ListStarsByEmotion(ctx context.Context, emotion string) ([]Star, error)
	// ListStarsByConstellation returns all stars in a constellation,
	// newest first.
	ListStarsByConstellation(ctx context.Context, constellationID string) ([]Star, error)
	// DeleteStarsBefore removes stars created before cutoff and reports
	// how many were deleted.
	DeleteStarsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// Close releases underlying resources.
	Close() error
}
