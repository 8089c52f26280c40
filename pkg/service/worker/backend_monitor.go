package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/utils/errutil"
	"github.com/mootai/moot/pkg/utils/logging"
)

// BackendSnapshot is the result of the latest backend probe
type BackendSnapshot struct {
	Healthy     bool              `json:"healthy"`
	ModelStatus model.ModelStatus `json:"model_status,omitempty"`
	Error       string            `json:"error,omitempty"`
	CheckedAt   time.Time         `json:"checked_at"`
}

// BackendMonitor periodically probes the generation backend and keeps the
// latest result. A change from healthy to unhealthy is reported once.
//
// Architecture assumptions:
// - Single server instance, each instance probes on its own
type BackendMonitor struct {
	backend  interfaces.Backend
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu       sync.RWMutex
	snapshot *BackendSnapshot
}

// NewBackendMonitor creates a monitor probing backend every interval
func NewBackendMonitor(backend interfaces.Backend, interval time.Duration) *BackendMonitor {
	return &BackendMonitor{
		backend:  backend,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the probe loop in the background. The first probe runs
// immediately without blocking the caller.
func (w *BackendMonitor) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("monitor interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Backend monitor starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the monitor to stop and waits for completion
func (w *BackendMonitor) Stop() {
	logging.Default().Info("Backend monitor stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Backend monitor stopped")
}

// Snapshot returns the latest probe result, or nil before the first probe
func (w *BackendMonitor) Snapshot() *BackendSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.snapshot == nil {
		return nil
	}
	copied := *w.snapshot
	return &copied
}

func (w *BackendMonitor) run(ctx context.Context) {
	defer close(w.doneCh)

	w.Probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Probe(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Backend monitor context cancelled")
			return
		}
	}
}

// Probe performs a single health check and records the result
func (w *BackendMonitor) Probe(ctx context.Context) *BackendSnapshot {
	snap := &BackendSnapshot{Healthy: true, CheckedAt: time.Now()}

	if err := w.backend.Health(ctx); err != nil {
		snap.Healthy = false
		snap.Error = err.Error()
	} else if status, err := w.backend.ModelStatus(ctx); err == nil && json.Valid(status) {
		snap.ModelStatus = status
	}

	w.mu.Lock()
	prev := w.snapshot
	w.snapshot = snap
	w.mu.Unlock()

	switch {
	case !snap.Healthy && (prev == nil || prev.Healthy):
		_ = errutil.Handle(ctx, goerr.Wrap(model.ErrBackendUnreachable, "backend became unhealthy", goerr.V(model.UpstreamErrorKey, snap.Error)), "backend health check failed")
	case snap.Healthy && prev != nil && !prev.Healthy:
		logging.From(ctx).Info("Backend recovered")
	}

	copied := *snap
	return &copied
}
