package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"photovault/internal/gateway"
	"photovault/internal/metrics"
	"photovault/internal/tasks"
)

// ServeMedia answers GET and HEAD for /media/{category}/{filename}. The
// category may itself contain slashes; the filename is the last segment.
func (h HandlerSet) ServeMedia(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()
	category, filename := splitMediaPath(c.Param("filepath"))

	result, err := h.gateway.Resolve(ctx, gateway.Request{
		Category: category,
		Filename: filename,
		Token:    h.token(c),
	})
	if err != nil {
		h.refuse(c, err, start)
		return
	}

	obj, info, err := h.gateway.Open(ctx, result)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("class", result.Resource.Class.String()).
			Str("path", result.Path).
			Msg("open resolved media failed")
		h.refuse(c, err, start)
		return
	}
	defer obj.Close()

	metrics.RecordMedia(result.Resource.Class.String(), "served", time.Since(start))

	c.Header("Content-Type", result.ContentType)
	c.Header("Cache-Control", "private, max-age=3600")
	http.ServeContent(c.Writer, c.Request, info.Name, info.ModTime, obj)
}

func (h HandlerSet) refuse(c *gin.Context, err error, start time.Time) {
	metrics.RecordMedia(classLabel(err), gateway.KindOf(err).String(), time.Since(start))
	c.AbortWithStatus(gateway.HTTPStatus(err))
}

// DeleteZip queues removal of the caller's packaged download. The worker
// does the actual delete.
func (h HandlerSet) DeleteZip(c *gin.Context) {
	ctx := c.Request.Context()

	target, principal, err := h.gateway.ZipArtifact(ctx, c.Param("fname"), h.token(c))
	if err != nil {
		status := gateway.HTTPStatus(err)
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	id, err := h.queue.Enqueue(ctx, tasks.ZipDelete(target, principal.UserID))
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", principal.UserID).Msg("enqueue zip delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"taskId": id,
	})
}

func splitMediaPath(raw string) (string, string) {
	trimmed := strings.TrimPrefix(raw, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "", trimmed
	}
	return trimmed[:i], trimmed[i+1:]
}

func classLabel(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Class != 0 {
		return gwErr.Class.String()
	}
	return "unknown"
}
