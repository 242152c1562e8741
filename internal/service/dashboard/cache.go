package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/model"
)

// SnapshotCache holds rendered dashboards per family.
type SnapshotCache interface {
	Get(ctx context.Context, familyID uuid.UUID) (*model.Dashboard, bool)
	Set(ctx context.Context, familyID uuid.UUID, d *model.Dashboard)
	Invalidate(ctx context.Context, familyID uuid.UUID)
}

func cacheKey(familyID uuid.UUID) string {
	return "dashboard:" + familyID.String()
}

// RedisCache stores snapshots as JSON with a TTL. Redis failures are logged
// and treated as misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, familyID uuid.UUID) (*model.Dashboard, bool) {
	raw, err := c.client.Get(ctx, cacheKey(familyID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("family_id", familyID.String()).Msg("dashboard cache read failed")
		}
		return nil, false
	}

	var d model.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Warn().Err(err).Str("family_id", familyID.String()).Msg("discarding corrupt dashboard snapshot")
		return nil, false
	}
	return &d, true
}

func (c *RedisCache) Set(ctx context.Context, familyID uuid.UUID, d *model.Dashboard) {
	raw, err := json.Marshal(d)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode dashboard snapshot")
		return
	}
	if err := c.client.Set(ctx, cacheKey(familyID), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("family_id", familyID.String()).Msg("dashboard cache write failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, familyID uuid.UUID) {
	if err := c.client.Del(ctx, cacheKey(familyID)).Err(); err != nil {
		log.Warn().Err(err).Str("family_id", familyID.String()).Msg("dashboard cache invalidation failed")
	}
}

type nopCache struct{}

func (nopCache) Get(context.Context, uuid.UUID) (*model.Dashboard, bool) { return nil, false }
func (nopCache) Set(context.Context, uuid.UUID, *model.Dashboard)        {}
func (nopCache) Invalidate(context.Context, uuid.UUID)                   {}
