package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"liquidhire/internal/repositories"
)

// RetentionConfig contains configuration for the retention sweeper.
type RetentionConfig struct {
	Schedule      string        // cron schedule, e.g. "0 3 * * *"
	ListingMaxAge time.Duration // drop catalog listings the feed stopped refreshing
	DeletedMaxAge time.Duration // hard-delete soft-deleted interview rows after this
	Enabled       bool
}

// RetentionJob sweeps data past its useful life: stale catalog listings
// and soft-deleted interview records. Live-session registry keys carry
// their own TTL and need no sweeping.
type RetentionJob struct {
	interviews *repositories.InterviewRepository
	catalog    repositories.JobRepository
	config     *RetentionConfig
	logger     *zap.Logger
	cron       *cron.Cron
}

func NewRetentionJob(interviews *repositories.InterviewRepository, catalog repositories.JobRepository, config *RetentionConfig, logger *zap.Logger) *RetentionJob {
	return &RetentionJob{
		interviews: interviews,
		catalog:    catalog,
		config:     config,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Start begins the scheduled sweep.
func (rj *RetentionJob) Start() error {
	if !rj.config.Enabled {
		rj.logger.Info("retention sweep is disabled, skipping scheduler")
		return nil
	}

	rj.logger.Info("starting retention sweeper", zap.String("schedule", rj.config.Schedule))

	_, err := rj.cron.AddFunc(rj.config.Schedule, func() {
		if err := rj.RunSweep(context.Background()); err != nil {
			rj.logger.Error("retention sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	rj.cron.Start()
	return nil
}

// Stop stops the scheduler.
func (rj *RetentionJob) Stop() {
	if rj.cron != nil {
		rj.cron.Stop()
		rj.logger.Info("retention sweeper stopped")
	}
}

// RunSweep performs a single pass. Each target is swept independently so
// one failing store does not block the other.
func (rj *RetentionJob) RunSweep(ctx context.Context) error {
	var firstErr error

	if rj.interviews != nil && rj.config.DeletedMaxAge > 0 {
		cutoff := time.Now().Add(-rj.config.DeletedMaxAge)
		n, err := rj.interviews.PurgeDeleted(cutoff)
		if err != nil {
			rj.logger.Error("interview purge failed", zap.Error(err))
			firstErr = err
		} else if n > 0 {
			rj.logger.Info("purged soft-deleted interviews", zap.Int64("count", n))
		}
	}

	if rj.catalog != nil && rj.config.ListingMaxAge > 0 {
		cutoff := time.Now().Add(-rj.config.ListingMaxAge)
		n, err := rj.catalog.DeleteStale(ctx, cutoff)
		if err != nil {
			rj.logger.Error("stale listing sweep failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		} else if n > 0 {
			rj.logger.Info("dropped stale listings", zap.Int64("count", n))
		}
	}

	return firstErr
}
