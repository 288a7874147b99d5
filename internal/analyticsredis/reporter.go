package analyticsredis

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
)

// RunReporter periodically mirrors registry stats into Redis until ctx is
// canceled. Mirroring failures are logged and swallowed: a Redis outage
// must never affect proxying or the control plane.
func RunReporter(ctx context.Context, mirror *Mirror, registry *faultstore.Registry, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := mirror.Record(ctx, registry.Stats()); err != nil {
				logger.Warn().Err(err).Msg("failed to mirror stats to redis")
			}
		}
	}
}
