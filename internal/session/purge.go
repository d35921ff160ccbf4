package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sphere/internal/metrics"
)

// Purger removes sessions whose lifetime has run out.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// RunPurger purges expired sessions every interval until ctx is done.
func RunPurger(ctx context.Context, p Purger, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil {
				logger.Warn("purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				metrics.RecordExpiredSessions(n)
				logger.Debug("purged expired sessions", zap.Int64("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
