package http

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unsentapp/unsent-server/internal/constellation"
	"github.com/unsentapp/unsent-server/internal/emotion"
	"github.com/unsentapp/unsent-server/internal/store"
)

// maxStarTextLen bounds submitted text in runes; longer input is truncated.
const maxStarTextLen = 400

// defaultCleanupAge is how old a star must be before cleanup removes it.
const defaultCleanupAge = 24 * time.Hour

// StarHandlers provides HTTP handlers for the star persistence endpoints.
type StarHandlers struct {
	store   store.Store
	matcher *constellation.Matcher
	log     *zerolog.Logger
}

// NewStarHandlers creates a new star handlers instance.
func NewStarHandlers(st store.Store, logger *zerolog.Logger) *StarHandlers {
	return &StarHandlers{store: st, matcher: constellation.NewMatcher(), log: logger}
}

// CreateStarRequest represents the star submission body.
type CreateStarRequest struct {
	Text string `json:"text" binding:"required"`
}

// StarResponse represents a star in API responses.
type StarResponse struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Emotion         string  `json:"emotion"`
	EmotionScore    float64 `json:"emotion_score"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	ConstellationID string  `json:"constellation_id"`
	CreatedAt       string  `json:"created_at"`
}

// ConstellationResponse lists the stars grouped with a star.
type ConstellationResponse struct {
	ID    string         `json:"id"`
	Stars []StarResponse `json:"stars"`
}

// CleanupResponse reports how many stars a cleanup removed.
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func starResponse(star *store.Star) StarResponse {
	return StarResponse{
		ID:              star.ID,
		Text:            star.Text,
		Emotion:         star.Emotion,
		EmotionScore:    star.EmotionScore,
		Lat:             star.Lat,
		Lng:             star.Lng,
		ConstellationID: star.ConstellationID,
		CreatedAt:       star.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateStar handles star submission.
// POST /api/stars
func (h *StarHandlers) CreateStar(c *gin.Context) {
	var req CreateStarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create star request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text is required"})
		return
	}
	// Truncate on rune boundaries so a multi-byte character straddling
	// the limit never yields invalid UTF-8.
	if runes := []rune(text); len(runes) > maxStarTextLen {
		text = string(runes[:maxStarTextLen])
	}

	tag, score := emotion.Detect(text)

	constellationID, err := h.assignConstellation(c, text, tag)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to assign constellation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	star, err := h.store.CreateStar(c.Request.Context(), &store.Star{
		ID:              uuid.NewString(),
		Text:            text,
		Emotion:         tag,
		EmotionScore:    score,
		ConstellationID: constellationID,
		// Geographic hint only; placement is decorative.
		Lat:       rand.Float64()*120 - 60,
		Lng:       rand.Float64()*360 - 180,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create star")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("star_id", star.ID).Str("emotion", star.Emotion).Msg("star created")
	c.JSON(http.StatusCreated, starResponse(star))
}

// ListStars returns all stars.
// GET /api/stars
func (h *StarHandlers) ListStars(c *gin.Context) {
	stars, err := h.store.ListStars(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list stars")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]StarResponse, 0, len(stars))
	for i := range stars {
		out = append(out, starResponse(&stars[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetStar returns a single star.
// GET /api/stars/:id
func (h *StarHandlers) GetStar(c *gin.Context) {
	star, err := h.store.GetStar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "star not found"})
			return
		}
		h.log.Error().Err(err).Str("star_id", c.Param("id")).Msg("failed to get star")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, starResponse(star))
}

// assignConstellation groups the new star with its most similar
// same-emotion peer, or founds a new constellation.
func (h *StarHandlers) assignConstellation(c *gin.Context, text, tag string) (string, error) {
	peers, err := h.store.ListStarsByEmotion(c.Request.Context(), tag)
	if err != nil {
		return "", err
	}
	candidates := make([]constellation.Candidate, 0, len(peers))
	for _, p := range peers {
		candidates = append(candidates, constellation.Candidate{
			Text:            p.Text,
			ConstellationID: p.ConstellationID,
		})
	}
	return h.matcher.Assign(text, candidates), nil
}

// GetConstellation returns the stars grouped with the given star.
// GET /api/stars/:id/constellation
func (h *StarHandlers) GetConstellation(c *gin.Context) {
	star, err := h.store.GetStar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "star not found"})
			return
		}
		h.log.Error().Err(err).Str("star_id", c.Param("id")).Msg("failed to get star")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	stars, err := h.store.ListStarsByConstellation(c.Request.Context(), star.ConstellationID)
	if err != nil {
		h.log.Error().Err(err).Str("star_id", star.ID).Msg("failed to list constellation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]StarResponse, 0, len(stars))
	for i := range stars {
		out = append(out, starResponse(&stars[i]))
	}
	c.JSON(http.StatusOK, ConstellationResponse{ID: star.ConstellationID, Stars: out})
}

// CleanupStars deletes stars older than 24 hours.
// POST /api/stars/cleanup
func (h *StarHandlers) CleanupStars(c *gin.Context) {
	cutoff := time.Now().UTC().Add(-defaultCleanupAge)
	deleted, err := h.store.DeleteStarsBefore(c.Request.Context(), cutoff)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to cleanup stars")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("deleted", deleted).Msg("old stars cleaned up")
	c.JSON(http.StatusOK, CleanupResponse{Deleted: deleted})
}
