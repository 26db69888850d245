package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"photovault/internal/config"
	"photovault/internal/gateway"
	"photovault/internal/middleware"
)

// Enqueuer hands cleanup work to the worker process.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload map[string]any) (string, error)
}

type HealthCheck func(ctx context.Context) error

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	gateway *gateway.Gateway
	queue   Enqueuer
	db      HealthCheck
	cache   HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, gw *gateway.Gateway, queue Enqueuer, db, cache HealthCheck) HandlerSet {
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		gateway: gw,
		queue:   queue,
		db:      db,
		cache:   cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	media := router.Group("/media")
	media.Use(middleware.RateLimit(h.cfg.Security.RateLimit))
	media.GET("/*filepath", h.ServeMedia)
	media.HEAD("/*filepath", h.ServeMedia)

	router.DELETE("/delete/zip/:fname", h.DeleteZip)
}

// token reads the bearer credential from the session cookie, falling back
// to an Authorization header for non-browser clients.
func (h HandlerSet) token(c *gin.Context) string {
	if cookie, err := c.Cookie(h.cfg.Security.CookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
