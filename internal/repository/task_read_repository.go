package repository

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	sharedredis "github.com/satyaranjan2005/Taskmanager-backend/shared/redis"
)

const taskStatsKeyPrefix = "task:stats:"

// TaskReadRepository handles task reads. Listings always go to the store;
// per-owner stats are cached in Redis until the next mutation of that
// owner's tasks.
type TaskReadRepository struct {
	store TaskStore
	stats *sharedredis.ViewCache[models.TaskStats]
}

func NewTaskReadRepository(store TaskStore, redisClient goredis.UniversalClient, statsTTL time.Duration) *TaskReadRepository {
	return &TaskReadRepository{
		store: store,
		stats: sharedredis.NewViewCache[models.TaskStats](redisClient, taskStatsKeyPrefix, statsTTL),
	}
}

func (r *TaskReadRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	return r.store.GetByID(ctx, ownerID, id)
}

func (r *TaskReadRepository) List(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]models.Task, error) {
	return r.store.List(ctx, ownerID, filter, sort)
}

// Stats returns the owner's status counts, from Redis when warm.
func (r *TaskReadRepository) Stats(ctx context.Context, ownerID string) (*models.TaskStats, error) {
	return r.stats.Load(ctx, ownerID, func(ctx context.Context) (*models.TaskStats, error) {
		counts, err := r.store.CountByStatus(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		stats := models.NewTaskStats(counts)
		return &stats, nil
	})
}

// InvalidateStats drops the cached stats of an owner.
func (r *TaskReadRepository) InvalidateStats(ctx context.Context, ownerID string) {
	r.stats.Invalidate(ctx, ownerID)
}
