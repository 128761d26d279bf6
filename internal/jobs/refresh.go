package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"liquidhire/internal/models"
	"liquidhire/internal/repositories"
)

// RefreshConfig contains configuration for the jobs feed refresher.
type RefreshConfig struct {
	Schedule string // cron schedule, e.g. "0 */6 * * *"
	FeedURL  string // JSON feed of scraped listings
	Enabled  bool
}

// RefreshJob periodically pulls the external jobs feed and upserts the
// listings into the catalog. The scraper lives outside this service; we
// only consume its output.
type RefreshJob struct {
	repo       repositories.JobRepository
	config     *RefreshConfig
	logger     *zap.Logger
	cron       *cron.Cron
	httpClient *http.Client
}

func NewRefreshJob(repo repositories.JobRepository, config *RefreshConfig, logger *zap.Logger) *RefreshJob {
	return &RefreshJob{
		repo:   repo,
		config: config,
		logger: logger,
		cron:   cron.New(),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Start begins the scheduled refresh.
func (rj *RefreshJob) Start() error {
	if !rj.config.Enabled || rj.repo == nil || rj.config.FeedURL == "" {
		rj.logger.Info("jobs feed refresh is disabled, skipping scheduler")
		return nil
	}

	rj.logger.Info("starting jobs feed refresher", zap.String("schedule", rj.config.Schedule))

	_, err := rj.cron.AddFunc(rj.config.Schedule, func() {
		if err := rj.RunRefresh(context.Background()); err != nil {
			rj.logger.Error("jobs feed refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule jobs refresh: %w", err)
	}

	rj.cron.Start()
	return nil
}

// Stop stops the scheduler.
func (rj *RefreshJob) Stop() {
	if rj.cron != nil {
		rj.cron.Stop()
		rj.logger.Info("jobs feed refresher stopped")
	}
}

// RunRefresh performs a single feed pull.
func (rj *RefreshJob) RunRefresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rj.config.FeedURL, nil)
	if err != nil {
		return fmt.Errorf("build feed request: %w", err)
	}

	resp, err := rj.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var listings []models.Job
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return fmt.Errorf("decode feed: %w", err)
	}

	upserted := 0
	for i := range listings {
		job := &listings[i]
		if job.URL == "" || job.Title == "" {
			continue
		}
		if job.Source == "" {
			job.Source = "external"
		}
		if err := rj.repo.Upsert(ctx, job); err != nil {
			rj.logger.Warn("listing upsert failed",
				zap.String("url", job.URL),
				zap.Error(err))
			continue
		}
		upserted++
	}

	rj.logger.Info("jobs feed refreshed",
		zap.Int("received", len(listings)),
		zap.Int("upserted", upserted))
	return nil
}

// RunManual runs a refresh on demand.
func (rj *RefreshJob) RunManual(ctx context.Context) error {
	return rj.RunRefresh(ctx)
}
