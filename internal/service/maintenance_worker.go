package service

import (
	"context"
	"log"
	"time"
)

// reportExpirer runs the report expiry sweep.
type reportExpirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// attemptPruner removes attempt records older than the retention window.
type attemptPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// MaintenanceWorker is a periodic background job: it runs the report expiry
// sweep and prunes attempt records past their retention window. Neither task
// sits on the request hot path. Start blocks until the context is cancelled
// or Stop is called, so callers run it in its own goroutine.
type MaintenanceWorker struct {
	reportSvc reportExpirer
	attempts  attemptPruner
	retention time.Duration
	interval  time.Duration
	stopCh    chan struct{}
}

// NewMaintenanceWorker creates a worker that ticks every interval.
func NewMaintenanceWorker(reportSvc reportExpirer, attempts attemptPruner, retention, interval time.Duration) *MaintenanceWorker {
	return &MaintenanceWorker{
		reportSvc: reportSvc,
		attempts:  attempts,
		retention: retention,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic maintenance loop. It runs one tick immediately,
// then every interval.
func (w *MaintenanceWorker) Start(ctx context.Context) {
	log.Printf("maintenance-worker: starting (interval=%s)", w.interval)

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("maintenance-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("maintenance-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *MaintenanceWorker) Stop() {
	close(w.stopCh)
}

// tick runs one cycle: expiry sweep, then attempt pruning. Both operations
// are idempotent, so an overlapping or repeated tick changes nothing.
func (w *MaintenanceWorker) tick(ctx context.Context) {
	start := time.Now()

	expired, err := w.reportSvc.ExpireDue(ctx)
	if err != nil {
		log.Printf("maintenance-worker: expiry sweep error: %v", err)
		return
	}

	pruned, err := w.attempts.Prune(ctx, w.retention)
	if err != nil {
		log.Printf("maintenance-worker: attempt prune error: %v", err)
		return
	}

	elapsed := time.Since(start)
	if expired > 0 || pruned > 0 {
		log.Printf("maintenance-worker: tick complete — %d reports expired, %d attempts pruned (%s)",
			expired, pruned, elapsed.Round(time.Millisecond))
	}
}
