package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		Database:    h.check(ctx, "database", h.db),
		Cache:       h.check(ctx, "redis", h.cache),
		Environment: h.cfg.Environment,
	}

	status := http.StatusOK
	if resp.Database == "error" || resp.Cache == "error" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (h HandlerSet) check(ctx context.Context, name string, fn HealthCheck) string {
	if fn == nil {
		return "disabled"
	}
	if err := fn(ctx); err != nil {
		h.log.Error().Err(err).Str("dependency", name).Msg("health check failed")
		return "error"
	}
	return "ok"
}
