package repository

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	sharedredis "github.com/satyaranjan2005/Taskmanager-backend/shared/redis"
)

const userViewKeyPrefix = "user:view:"

// UserReadRepository serves user views from Redis first, falling back to the
// write store on a miss. Token verification hits it on every request.
type UserReadRepository struct {
	store UserStore
	cache *sharedredis.ViewCache[models.UserView]
}

func NewUserReadRepository(store UserStore, redisClient goredis.UniversalClient, ttl time.Duration) *UserReadRepository {
	return &UserReadRepository{
		store: store,
		cache: sharedredis.NewViewCache[models.UserView](redisClient, userViewKeyPrefix, ttl),
	}
}

// GetByID returns a UserView from Redis first, then the store.
func (r *UserReadRepository) GetByID(ctx context.Context, id string) (*models.UserView, error) {
	return r.cache.Load(ctx, id, func(ctx context.Context) (*models.UserView, error) {
		user, err := r.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return user.View(), nil
	})
}

// InvalidateUserView drops the cached view of a user.
// Called by the command service after every mutation.
func (r *UserReadRepository) InvalidateUserView(ctx context.Context, id string) {
	r.cache.Invalidate(ctx, id)
}
