package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/clock"
)

// Syncer refreshes every connected integration and reports how many it
// touched.
type Syncer interface {
	SyncAll(ctx context.Context) (int, error)
}

// ConnectorSyncWorker re-syncs connected integrations on a fixed
// interval, the background twin of the "Sync All Now" button.
type ConnectorSyncWorker struct {
	syncer   Syncer
	clock    clock.Clock
	interval time.Duration
	onSync   func(n int, err error)
}

func NewConnectorSyncWorker(syncer Syncer, c clock.Clock, interval time.Duration) *ConnectorSyncWorker {
	return &ConnectorSyncWorker{
		syncer:   syncer,
		clock:    c,
		interval: interval,
	}
}

// OnSync registers a hook that runs after every pass.
func (w *ConnectorSyncWorker) OnSync(fn func(n int, err error)) {
	w.onSync = fn
}

// Start blocks until ctx is done. A non-positive interval disables the
// worker.
func (w *ConnectorSyncWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	logger := zerolog.Ctx(ctx).With().Str("worker", "connector_sync").Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.clock.After(w.interval):
			n, err := w.syncer.SyncAll(logger.WithContext(ctx))
			if err != nil {
				// Log error but continue
				logger.Error().Err(err).Msg("failed to sync connectors")
			}
			if w.onSync != nil {
				w.onSync(n, err)
			}
		}
	}
}
