// internal/gitrepo/refresher.go
//
// Background mirror refresh loop, one per environment.
//
// Context
// -------
// Every RefreshInterval the loop re-syncs the local mirror (fetch with
// prune plus hard reset).  A failed tick is logged, counted, and retried
// on the next tick; the loop only stops when its context is cancelled.
//
// No lock is taken against concurrent request-path reads of the same
// mirror.  Reads address content as ref:path through git's object store,
// so already-resolved refs stay readable mid-reset; a branch-relative
// read racing a reset may observe either the pre- or post-refresh tree.
// Configuration is eventually consistent with upstream by at most one
// interval, and no request ever blocks on a refresh.
package gitrepo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/martinmares/simple-config-server/internal/metrics"
)

// Interval floor and default, in seconds.
const (
	minRefreshSecs     = 10
	defaultRefreshSecs = 30
)

// RefreshInterval maps the configured refresh_interval_secs to the
// effective loop period: zero (unset) means the default, anything lower
// than the floor is clamped to it.
func RefreshInterval(gc GitConfig) time.Duration {
	secs := gc.RefreshIntervalSecs
	if secs <= 0 {
		secs = defaultRefreshSecs
	}
	if secs < minRefreshSecs {
		secs = minRefreshSecs
	}
	return time.Duration(secs) * time.Second
}

// Refresher keeps one environment's mirror in sync off the request path.
type Refresher struct {
	name    string
	gc      GitConfig
	backend Backend
	log     *zap.SugaredLogger
}

// NewRefresher returns a Refresher for the named environment.
func NewRefresher(name string, gc GitConfig, backend Backend, log *zap.SugaredLogger) *Refresher {
	return &Refresher{name: name, gc: gc, backend: backend, log: log}
}

// Run loops until ctx is cancelled.  Call it on its own goroutine.
func (r *Refresher) Run(ctx context.Context) {
	interval := RefreshInterval(r.gc)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Infow("mirror refresh loop started",
		"environment", r.name, "interval", interval)

	for {
		select {
		case <-ctx.Done():
			r.log.Infow("mirror refresh loop stopped", "environment", r.name)
			return
		case <-ticker.C:
			if err := r.backend.Sync(ctx, r.gc); err != nil {
				r.log.Warnw("mirror refresh failed",
					"environment", r.name, "workdir", r.gc.Workdir, "err", err)
				metrics.MirrorSyncErrorsTotal.WithLabelValues(r.name).Inc()
				continue
			}
			metrics.MirrorSyncTotal.WithLabelValues(r.name).Inc()
		}
	}
}
