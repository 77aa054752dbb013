// internal/repository/redis/preferences.go

// Package redis holds the Redis-backed collaborators: a read-through
// preference cache and the zero-result query log.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/models"
)

const preferencesKeyPrefix = "search:prefs:"

// ProfileSource is the store the cache reads through to.
type ProfileSource interface {
	FetchPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
}

// PreferenceCache caches preferences as JSON. Users without history are
// cached as "null" so they do not hit the source on every search.
type PreferenceCache struct {
	client goredis.Cmdable
	source ProfileSource
	ttl    time.Duration
	logger logger.Logger
}

func NewPreferenceCache(client goredis.Cmdable, source ProfileSource, ttl time.Duration, log logger.Logger) *PreferenceCache {
	return &PreferenceCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"repository": "preference-cache"}),
	}
}

func (c *PreferenceCache) FetchPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	key := preferencesKeyPrefix + userID

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var prefs *models.UserPreferences
		if err := json.Unmarshal([]byte(val), &prefs); err == nil {
			return prefs, nil
		}
		c.logger.Warn("discarding unreadable cached preferences", map[string]interface{}{"userId": userID})
	case !errors.Is(err, goredis.Nil):
		c.logger.Warn("preference cache read failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	prefs, err := c.source.FetchPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("preference cache write failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}
	return prefs, nil
}

// Invalidate drops the cached entry for userID.
func (c *PreferenceCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, preferencesKeyPrefix+userID).Err()
}
