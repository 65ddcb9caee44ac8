package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsWorker listens for PostgreSQL NOTIFY on the 'report_changes' channel
// and batches lowest-price recomputation. If 50 reports hit product X in one
// window, the flags are refreshed once.
type StatsWorker struct {
	pool      *pgxpool.Pool
	reportSvc *ReportService
	cache     *CacheService
	batchMs   time.Duration

	mu      sync.Mutex
	pending map[string]struct{} // product IDs waiting for recomputation
}

// NewStatsWorker creates a stats recomputation worker.
func NewStatsWorker(pool *pgxpool.Pool, reportSvc *ReportService, cache *CacheService, batchWindow time.Duration) *StatsWorker {
	return &StatsWorker{
		pool:      pool,
		reportSvc: reportSvc,
		cache:     cache,
		batchMs:   batchWindow,
		pending:   make(map[string]struct{}),
	}
}

// Start begins listening for report_changes notifications and processing
// batches. It blocks until the context is cancelled, so callers run it in
// its own goroutine.
func (w *StatsWorker) Start(ctx context.Context) {
	log.Printf("stats-worker: starting (batch window=%s)", w.batchMs)

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("stats-worker: stopping (context cancelled)")
				return
			}
			log.Printf("stats-worker: listen error, reconnecting in 5s: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Println("stats-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on report_changes,
// and collects notifications into the pending set.
func (w *StatsWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN report_changes")
	if err != nil {
		return err
	}
	log.Println("stats-worker: listening on report_changes")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		productID := notification.Payload
		if productID == "" {
			continue
		}

		w.mu.Lock()
		w.pending[productID] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set.
func (w *StatsWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchMs)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush drains the pending set, refreshes lowest-price flags per product,
// and invalidates cached stats.
func (w *StatsWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	refreshed := 0
	for productID := range batch {
		if err := w.reportSvc.RefreshLowest(ctx, productID); err != nil {
			log.Printf("stats-worker: refresh error for %s: %v", productID, err)
			continue
		}

		if w.cache != nil {
			if err := w.cache.InvalidateStats(ctx, productID); err != nil {
				log.Printf("stats-worker: cache invalidate error for %s: %v", productID, err)
			}
		}

		refreshed++
	}

	if refreshed > 0 {
		log.Printf("stats-worker: batch complete — %d products refreshed (from %d notifications)",
			refreshed, len(batch))
	}
}
