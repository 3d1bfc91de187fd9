package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/usbest/usbest-backend/config"
	"github.com/usbest/usbest-backend/models"
	"go.uber.org/zap"
)

// AdCache holds ads by id for the read endpoints. Participation writes bypass it
// and overwrite the entry with the stored row. Implementations must treat failures as misses.
type AdCache interface {
	Get(ctx context.Context, adID uint) (*models.Ad, bool)
	Set(ctx context.Context, ad *models.Ad)
}

// RedisAdCache implements AdCache on redis with a fixed TTL
type RedisAdCache struct {
	rc     *redis.Client
	cfg    config.CacheConfig
	logger *zap.Logger
}

// NewRedisAdCache creates a redis backed ad cache
func NewRedisAdCache(rc *redis.Client, cfg config.CacheConfig, logger *zap.Logger) *RedisAdCache {
	return &RedisAdCache{rc: rc, cfg: cfg, logger: logger}
}

func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}

func adCacheKey(cfg config.CacheConfig, adID uint) string {
	return redisKey(cfg, fmt.Sprintf("ad:%d", adID))
}

func (c *RedisAdCache) ttl() time.Duration {
	if c.cfg.DefaultTTL <= 0 {
		return 5 * time.Minute
	}
	return c.cfg.DefaultTTL
}

// Get returns the cached ad, false on miss or any redis failure
func (c *RedisAdCache) Get(ctx context.Context, adID uint) (*models.Ad, bool) {
	bs, err := c.rc.Get(ctx, adCacheKey(c.cfg, adID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("ad cache get failed", zap.Uint("ad_id", adID), zap.Error(err))
		}
		adCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var ad models.Ad
	if err := json.Unmarshal(bs, &ad); err != nil {
		adCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	adCacheLookups.WithLabelValues("hit").Inc()
	return &ad, true
}

// Set stores the ad; failures are logged and ignored
func (c *RedisAdCache) Set(ctx context.Context, ad *models.Ad) {
	bs, err := json.Marshal(ad)
	if err != nil {
		return
	}
	if err := c.rc.Set(ctx, adCacheKey(c.cfg, ad.ID), bs, c.ttl()).Err(); err != nil {
		c.logger.Debug("ad cache set failed", zap.Uint("ad_id", ad.ID), zap.Error(err))
	}
}
