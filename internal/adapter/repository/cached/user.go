package cached

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"task-user-service/internal/adapter/cache"
	"task-user-service/internal/domain/query"
	domain "task-user-service/internal/domain/user"
	"task-user-service/internal/usecase/reconcile"
	"task-user-service/internal/usecase/user"
	"task-user-service/pkg/logger"
)

// UserStore is the full user repository: use case reads and writes plus the
// pending list updates made by the reconciler.
type UserStore interface {
	user.Repository
	reconcile.UserStore
}

// CachedUserRepository implements UserStore with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type CachedUserRepository struct {
	dbRepo UserStore
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ UserStore = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo UserStore, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// List delegates to the DB repository.
func (r *CachedUserRepository) List(ctx context.Context, p query.Params) ([]*domain.User, error) {
	return r.dbRepo.List(ctx, p)
}

// Count delegates to the DB repository.
func (r *CachedUserRepository) Count(ctx context.Context, p query.Params) (int64, error) {
	return r.dbRepo.Count(ctx, p)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	log := logger.WithContext(ctx, r.log)

	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Cache miss - use single-flight to prevent stampede
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the pending slice
	u := *result.(*domain.User)
	u.PendingTasks = slices.Clone(u.PendingTasks)
	return &u, nil
}

// GetByEmail delegates to the DB repository.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Create(ctx, u)
}

// Replace replaces the user in DB and invalidates the cache.
func (r *CachedUserRepository) Replace(ctx context.Context, u *domain.User) (*domain.User, error) {
	updated, err := r.dbRepo.Replace(ctx, u)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, u.ID, "replace")
	return updated, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	deleted, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id, "delete")
	return deleted, nil
}

// AddPendingTask updates the pending list in DB and invalidates the cache.
func (r *CachedUserRepository) AddPendingTask(ctx context.Context, userID, taskID string) error {
	if err := r.dbRepo.AddPendingTask(ctx, userID, taskID); err != nil {
		return err
	}
	r.invalidate(ctx, userID, "add pending task")
	return nil
}

// RemovePendingTask updates the pending list in DB and invalidates the cache.
func (r *CachedUserRepository) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	if err := r.dbRepo.RemovePendingTask(ctx, userID, taskID); err != nil {
		return err
	}
	r.invalidate(ctx, userID, "remove pending task")
	return nil
}

// invalidate drops a user from the cache. Failures leave the entry to expire.
func (r *CachedUserRepository) invalidate(ctx context.Context, id, op string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, r.log).Warn("failed to invalidate cache",
			zap.String("id", id),
			zap.String("op", op),
			zap.Error(err),
		)
	}
}
