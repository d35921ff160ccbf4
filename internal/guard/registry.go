package guard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"sphere/internal/model"
	"sphere/internal/redirect"
)

// Registry hands out one Guard per browser session, so overlapping page
// navigations of the same session share a generation counter.
type Registry struct {
	policy redirect.Policy
	logger *zap.Logger
	guards sync.Map
	now    func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(policy redirect.Policy, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{policy: policy, logger: logger, now: time.Now}
}

// For returns the guard of sessionID, creating it on first use.
func (r *Registry) For(sessionID string) *Guard {
	v, ok := r.guards.Load(sessionID)
	if !ok {
		v, _ = r.guards.LoadOrStore(sessionID, New(r.policy, r.logger))
	}
	g := v.(*Guard)
	g.lastUsed.Store(r.now().UnixNano())
	return g
}

// Navigate runs a page navigation of sessionID through its guard. A session
// without a token is sent to sign-in without keeping a guard for it.
func (r *Registry) Navigate(ctx context.Context, sessionID string, authn Authenticator, nav redirect.Navigator, required model.RoleSlug) Decision {
	if !authn.IsAuthenticated(ctx) {
		r.Forget(sessionID)
		return r.Authorize(ctx, authn, nav, required)
	}
	return r.For(sessionID).Check(ctx, authn, nav, required)
}

// Authorize checks a data request. It never supersedes or is superseded by
// another request of the same session.
func (r *Registry) Authorize(ctx context.Context, authn Authenticator, nav redirect.Navigator, required model.RoleSlug) Decision {
	return Authorize(ctx, r.policy, r.logger, authn, nav, required)
}

// Forget drops the guard of sessionID.
func (r *Registry) Forget(sessionID string) {
	r.guards.Delete(sessionID)
}

// Sweep drops guards not used since cutoff and reports how many it removed.
func (r *Registry) Sweep(cutoff time.Time) int {
	removed := 0
	r.guards.Range(func(key, value any) bool {
		if value.(*Guard).lastUsed.Load() < cutoff.UnixNano() {
			r.guards.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len reports how many sessions currently hold a guard.
func (r *Registry) Len() int {
	n := 0
	r.guards.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// RunSweeper drops guards idle for longer than idle, checking every
// interval, until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(r.now().Add(-idle)); n > 0 {
				r.logger.Debug("evicted idle guards", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
