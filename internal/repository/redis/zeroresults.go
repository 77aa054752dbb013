// internal/repository/redis/zeroresults.go
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	zeroResultsKeyPrefix = "search:zero-results:"
	zeroResultsRetention = 30 * 24 * time.Hour
)

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// ZeroResultLog counts queries that returned nothing in one sorted set per
// UTC day.
type ZeroResultLog struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewZeroResultLog(client goredis.Cmdable) *ZeroResultLog {
	return &ZeroResultLog{client: client, now: time.Now}
}

func (z *ZeroResultLog) RecordZeroResult(ctx context.Context, query string) error {
	key := dayKey(z.now())
	_, err := z.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZIncrBy(ctx, key, 1, query)
		pipe.Expire(ctx, key, zeroResultsRetention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record zero-result query: %w", err)
	}
	return nil
}

// Top returns the n most frequent zero-result queries of day.
func (z *ZeroResultLog) Top(ctx context.Context, day time.Time, n int64) ([]QueryCount, error) {
	if n <= 0 {
		return []QueryCount{}, nil
	}
	entries, err := z.client.ZRevRangeWithScores(ctx, dayKey(day), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read zero-result queries: %w", err)
	}

	out := make([]QueryCount, 0, len(entries))
	for _, e := range entries {
		member, _ := e.Member.(string)
		out = append(out, QueryCount{Query: member, Count: int64(e.Score)})
	}
	return out, nil
}

func dayKey(t time.Time) string {
	return zeroResultsKeyPrefix + t.UTC().Format("20060102")
}
