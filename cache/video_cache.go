// Package cache holds Redis-backed caches for upstream API responses.
// It caches third-party metadata only; user state always lives in MySQL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"djradar/core/youtube"
	"djradar/logger"

	"github.com/go-redis/redis/v8"
)

const videoDetailTTL = 6 * time.Hour

// VideoDetailCache caches YouTube video detail records so repeated
// refreshes of the same DJs do not re-spend API quota on known videos.
type VideoDetailCache struct {
	client *redis.Client
}

// NewVideoDetailCache creates a cache on the given Redis client.
func NewVideoDetailCache(client *redis.Client) *VideoDetailCache {
	return &VideoDetailCache{client: client}
}

func videoDetailKey(id string) string {
	return fmt.Sprintf("video:detail:%s", id)
}

// GetDetails returns cached details for ids, plus the ids that missed.
// A Redis failure degrades to a full miss; the caller falls back to the API.
func (c *VideoDetailCache) GetDetails(ctx context.Context, ids []string) ([]youtube.VideoDetail, []string) {
	if c == nil || c.client == nil || len(ids) == 0 {
		return nil, ids
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = videoDetailKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("video detail cache read failed", logger.ErrorField(err))
		return nil, ids
	}

	var hits []youtube.VideoDetail
	var missing []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var detail youtube.VideoDetail
		if err := json.Unmarshal([]byte(s), &detail); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		hits = append(hits, detail)
	}
	return hits, missing
}

// PutDetails stores details with a TTL. Failures are logged and ignored.
func (c *VideoDetailCache) PutDetails(ctx context.Context, details []youtube.VideoDetail) {
	if c == nil || c.client == nil || len(details) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for _, d := range details {
		data, err := json.Marshal(d)
		if err != nil {
			continue
		}
		pipe.Set(ctx, videoDetailKey(d.ID), data, videoDetailTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("video detail cache write failed", logger.ErrorField(err))
	}
}
