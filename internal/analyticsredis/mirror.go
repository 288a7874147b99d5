// Package analyticsredis optionally mirrors registry statistics into Redis
// so an external dashboard can poll them without hitting the control plane
// directly. It never touches the data-plane byte stream.
package analyticsredis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
)

const keyPrefix = "redis-fault-proxy:stats:"

// Mirror pushes faultstore.Stats snapshots into Redis keys.
type Mirror struct {
	redis *redis.Client
}

// NewMirror builds a Mirror over an existing go-redis client.
func NewMirror(client *redis.Client) *Mirror {
	return &Mirror{redis: client}
}

// Record writes the current stats snapshot to Redis, each field as its own
// key under keyPrefix, with a TTL so a dead proxy's stale numbers eventually
// expire rather than lying to a dashboard forever.
func (m *Mirror) Record(ctx context.Context, stats faultstore.Stats) error {
	pipe := m.redis.Pipeline()
	ttl := time.Hour

	pipe.Set(ctx, keyPrefix+"total_requests", stats.TotalRequests, ttl)
	pipe.Set(ctx, keyPrefix+"delayed_requests", stats.DelayedRequests, ttl)
	pipe.Set(ctx, keyPrefix+"errored_requests", stats.ErroredRequests, ttl)
	pipe.Set(ctx, keyPrefix+"dropped_requests", stats.DroppedRequests, ttl)
	if !stats.LastInjectionTime.IsZero() {
		pipe.Set(ctx, keyPrefix+"last_injection_time", stats.LastInjectionTime.UTC().Format(time.RFC3339Nano), ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Fetch reads the mirrored stats back out of Redis. Used by tests and by
// any out-of-process dashboard that prefers hitting Redis directly over the
// control plane's GET /stats. Only the four request counters are read back;
// the returned LastInjectionTime and LastMutationTime are always zero.
func (m *Mirror) Fetch(ctx context.Context) (faultstore.Stats, error) {
	var stats faultstore.Stats

	vals, err := m.redis.MGet(ctx,
		keyPrefix+"total_requests",
		keyPrefix+"delayed_requests",
		keyPrefix+"errored_requests",
		keyPrefix+"dropped_requests",
	).Result()
	if err != nil {
		return stats, err
	}

	stats.TotalRequests = toInt64(vals[0])
	stats.DelayedRequests = toInt64(vals[1])
	stats.ErroredRequests = toInt64(vals[2])
	stats.DroppedRequests = toInt64(vals[3])

	return stats, nil
}

func toInt64(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
