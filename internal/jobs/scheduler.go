package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"photovault/internal/config"
	"photovault/internal/tasks"
)

const zipSweepLock = "jobs:zip-sweep"

type Enqueuer interface {
	Enqueue(ctx context.Context, payload map[string]any) (string, error)
}

// Locker grants a short lease so that only one API replica enqueues a
// scheduled task per tick.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, ksuid.New().String(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	lock  Locker
	cfg   config.JobsConfig
	log   zerolog.Logger
}

func NewScheduler(queue Enqueuer, lock Locker, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		lock:  lock,
		cfg:   cfg,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.cfg.ZipSweep == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.ZipSweep, s.enqueueZipSweep); err != nil {
		return fmt.Errorf("schedule zip sweep %q: %w", s.cfg.ZipSweep, err)
	}

	s.cron.Start()
	s.log.Info().Str("spec", s.cfg.ZipSweep).Msg("scheduler started")
	return nil
}

// Stop waits for running jobs, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueZipSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.runZipSweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("enqueue zip sweep failed")
	}
}

func (s *Scheduler) runZipSweep(ctx context.Context) error {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, zipSweepLock, s.cfg.LockTTL)
		if err != nil {
			return err
		}
		if !acquired {
			s.log.Debug().Msg("zip sweep already scheduled by another replica")
			return nil
		}
	}

	id, err := s.queue.Enqueue(ctx, tasks.ZipSweep())
	if err != nil {
		return err
	}
	s.log.Info().Str("message_id", id).Msg("zip sweep enqueued")
	return nil
}
