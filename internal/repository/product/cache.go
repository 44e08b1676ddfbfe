package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront-api/internal/domain"
)

const cacheTTL = 5 * time.Minute

// cacheAsideRepo keeps product-by-id lookups in Redis. Reads fall through to
// Postgres on a miss; writes go to Postgres first and then drop the cached
// copy. A Redis outage degrades to plain Postgres reads.
type cacheAsideRepo struct {
	Repository
	redis  *redis.Client
	logger zerolog.Logger
}

// NewCacheAside wraps repo with a Redis cache for GetByID.
func NewCacheAside(repo Repository, client *redis.Client, logger zerolog.Logger) Repository {
	return &cacheAsideRepo{Repository: repo, redis: client, logger: logger}
}

func cacheKey(id string) string {
	return "product:" + id
}

func (r *cacheAsideRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := r.redis.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var p domain.Product
		if uerr := json.Unmarshal(raw, &p); uerr == nil {
			return &p, nil
		}
		// corrupt entry, fall through and rewrite
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn().Err(err).Str("product_id", id).Msg("product cache read failed")
	}

	p, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, merr := json.Marshal(p); merr == nil {
		if serr := r.redis.Set(ctx, cacheKey(id), raw, cacheTTL).Err(); serr != nil {
			r.logger.Warn().Err(serr).Str("product_id", id).Msg("product cache write failed")
		}
	}
	return p, nil
}

func (r *cacheAsideRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	updated, err := r.Repository.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, p.ID)
	return updated, nil
}

func (r *cacheAsideRepo) Delete(ctx context.Context, id string) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cacheAsideRepo) invalidate(ctx context.Context, id string) {
	if err := r.redis.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.logger.Warn().Err(err).Str("product_id", id).Msg("product cache invalidation failed")
	}
}
