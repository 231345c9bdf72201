package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/unsentapp/unsent-server/internal/config"
	"github.com/unsentapp/unsent-server/internal/core"
	"github.com/unsentapp/unsent-server/internal/store"
	"github.com/unsentapp/unsent-server/internal/store/sqlite"
	transporthttp "github.com/unsentapp/unsent-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// starSource adapts the persistence layer to the narrow lookup the hub
// needs for thread-request delivery.
type starSource struct {
	st store.Store
}

func (s starSource) GetStar(ctx context.Context, id string) (*core.Star, error) {
	star, err := s.st.GetStar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &core.Star{
		ID:              star.ID,
		Text:            star.Text,
		Emotion:         star.Emotion,
		EmotionScore:    star.EmotionScore,
		Lat:             star.Lat,
		Lng:             star.Lng,
		ConstellationID: star.ConstellationID,
		CreatedAt:       star.CreatedAt,
	}, nil
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	hub := core.NewHub(starSource{st: st}, logger, core.Config{
		SessionSeconds: cfg.SessionSeconds,
		MergeSeconds:   cfg.MergeSeconds,
		TickInterval:   time.Second,
		CanvasWidth:    cfg.CanvasWidth,
	})
	server := transporthttp.NewServer(hub, st, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
