package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photovault/internal/config"
	"photovault/internal/metrics"
	"photovault/internal/storage"
)

const (
	TypeZipDelete = "zip_delete"
	TypeZipSweep  = "zip_sweep"
)

var ErrOutsideZipRoot = errors.New("path outside zip root")

type TaskPayload struct {
	Type   string `json:"type"`
	Path   string `json:"path"`
	UserID string `json:"userId"`
}

// ZipDelete builds the stream values for removing one packaged download.
func ZipDelete(p string, userID int64) map[string]any {
	return map[string]any{
		"type":   TypeZipDelete,
		"path":   p,
		"userId": fmt.Sprint(userID),
	}
}

func ZipSweep() map[string]any {
	return map[string]any{"type": TypeZipSweep}
}

// Processor is the only component that removes stored files.
type Processor struct {
	storage storage.Janitor
	zipRoot string
	zipTTL  time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

func NewProcessor(janitor storage.Janitor, storageCfg config.StorageConfig, jobsCfg config.JobsConfig, logger zerolog.Logger) *Processor {
	return &Processor{
		storage: janitor,
		zipRoot: path.Clean(storageCfg.ZipRoot),
		zipTTL:  jobsCfg.ZipTTL,
		now:     time.Now,
		logger:  logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	var err error
	switch payload.Type {
	case TypeZipDelete:
		err = p.handleZipDelete(ctx, payload)
	case TypeZipSweep:
		err = p.handleZipSweep(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CleanupTasks.WithLabelValues(payload.Type, result).Inc()
	return err
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleZipDelete(ctx context.Context, payload TaskPayload) error {
	target := path.Clean(payload.Path)
	if !p.underZipRoot(target) {
		// dropping it is the only sane outcome; retrying will not help
		p.logger.Error().Str("path", payload.Path).Msg("refusing zip delete outside zip root")
		return nil
	}

	if err := p.storage.Remove(ctx, target); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			p.logger.Debug().Str("path", target).Msg("zip already gone")
			return nil
		}
		return fmt.Errorf("remove %s: %w", target, err)
	}

	p.logger.Info().Str("path", target).Str("user_id", payload.UserID).Msg("zip deleted")
	return nil
}

func (p *Processor) handleZipSweep(ctx context.Context) error {
	if p.zipTTL <= 0 {
		return nil
	}
	cutoff := p.now().Add(-p.zipTTL)

	stale, err := p.storage.ListOlderThan(ctx, p.zipRoot, cutoff)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("list %s: %w", p.zipRoot, err)
	}

	var failed int
	for _, name := range stale {
		if err := p.storage.Remove(ctx, name); err != nil && !errors.Is(err, storage.ErrNotExist) {
			failed++
			p.logger.Warn().Err(err).Str("path", name).Msg("sweep remove failed")
		}
	}

	p.logger.Info().
		Int("stale", len(stale)).
		Int("failed", failed).
		Time("cutoff", cutoff).
		Msg("zip sweep finished")

	if failed > 0 {
		return fmt.Errorf("zip sweep: %d of %d removals failed", failed, len(stale))
	}
	return nil
}

func (p *Processor) underZipRoot(name string) bool {
	if p.zipRoot == "" || p.zipRoot == "." {
		return false
	}
	return name != p.zipRoot && path.Dir(name) == p.zipRoot
}
