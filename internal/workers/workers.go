package workers

import (
	"context"
	"time"

	"comedyFinderAPI/internal/logger"
)

// Purger removes expired cache rows and reports how many went.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StartCleanupWorker purges expired cache rows every interval until ctx is done.
func StartCleanupWorker(ctx context.Context, purger Purger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanupExpiredRows(ctx, purger)
			}
		}
	}()
}

func cleanupExpiredRows(ctx context.Context, purger Purger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	log := logger.GetLogger("workers")

	purged, err := purger.PurgeExpired(ctx)
	if err != nil {
		log.Warnw("cache cleanup failed", "error", err)
		return
	}
	if purged > 0 {
		log.Infow("expired cache rows purged", "count", purged)
	}
}
