package repositories

import (
	"context"
	"time"

	"liquidhire/internal/models"
)

// JobRepository is the jobs catalog. The production implementation lives in
// repositories/mongo; tests substitute an in-memory one.
type JobRepository interface {
	List(ctx context.Context, limit int64) ([]models.Job, error)
	Search(ctx context.Context, terms []string, limit int64) ([]models.Job, error)
	Upsert(ctx context.Context, job *models.Job) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}
