package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/unsentapp/unsent-server/internal/config"
	"github.com/unsentapp/unsent-server/internal/core"
	"github.com/unsentapp/unsent-server/internal/store"
)

// NewServer builds an HTTP server with REST and WebSocket routes.
func NewServer(hub *core.Hub, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger), CORSMiddleware())

	router.GET("/health", healthHandler)

	stars := NewStarHandlers(st, logger)
	api := router.Group("/api")
	{
		api.POST("/stars", stars.CreateStar)
		api.GET("/stars", stars.ListStars)
		api.GET("/stars/:id", stars.GetStar)
		api.GET("/stars/:id/constellation", stars.GetConstellation)
		api.POST("/stars/cleanup", stars.CleanupStars)
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
