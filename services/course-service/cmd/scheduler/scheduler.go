package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sweepLockKey     = "course-service:sweeper:lock"
	sweepBatchSize   = 50
	checkpointMaxAge = 7 * 24 * time.Hour
)

// releaseLockScript deletes the lock only while it still holds the caller's token
const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// StaleCourseSweeper re-emits notes generation for courses stuck in Generating
type StaleCourseSweeper interface {
	SweepStale(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

// CheckpointPruner removes job step checkpoints that can no longer be replayed
type CheckpointPruner interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// Locker is the part of the Redis client used for the sweep lock
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Scheduler runs the periodic maintenance of the course service
type Scheduler struct {
	cron        *cron.Cron
	locker      Locker
	sweeper     StaleCourseSweeper
	checkpoints CheckpointPruner
	staleAfter  time.Duration
	lockTTL     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewScheduler creates a new scheduler instance
func NewScheduler(locker Locker, sweeper StaleCourseSweeper, checkpoints CheckpointPruner, staleAfter time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		locker:      locker,
		sweeper:     sweeper,
		checkpoints: checkpoints,
		staleAfter:  staleAfter,
		lockTTL:     time.Minute,
		now:         time.Now,
		logger:      logger,
	}
}

// Start schedules the sweep on spec and starts the cron runner
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.runOnce(context.Background()) }); err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("schedule", spec))
	return nil
}

// Stop waits for a running sweep to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// runOnce sweeps stale courses and prunes old checkpoints while holding the lock
func (s *Scheduler) runOnce(ctx context.Context) {
	token := uuid.NewString()
	acquired, err := s.locker.SetNX(ctx, sweepLockKey, token, s.lockTTL).Result()
	if err != nil {
		s.logger.Error("Failed to acquire sweep lock", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("Sweep already running on another replica")
		return
	}
	defer s.releaseLock(ctx, token)

	now := s.now()

	swept, err := s.sweeper.SweepStale(ctx, now.Add(-s.staleAfter), sweepBatchSize)
	if err != nil {
		s.logger.Error("Failed to sweep stale courses", zap.Error(err))
	} else if swept > 0 {
		s.logger.Info("Re-dispatched stale courses", zap.Int("count", swept))
	}

	pruned, err := s.checkpoints.DeleteOlderThan(ctx, now.Add(-checkpointMaxAge))
	if err != nil {
		s.logger.Error("Failed to prune job checkpoints", zap.Error(err))
		return
	}
	if pruned > 0 {
		s.logger.Info("Pruned job checkpoints", zap.Int64("count", pruned))
	}
}

func (s *Scheduler) releaseLock(ctx context.Context, token string) {
	released, err := s.locker.Eval(ctx, releaseLockScript, []string{sweepLockKey}, token).Int64()
	if err != nil {
		s.logger.Warn("Failed to release sweep lock", zap.Error(err))
		return
	}
	if released == 0 {
		s.logger.Warn("Sweep lock expired before release", zap.Duration("ttl", s.lockTTL))
	}
}
