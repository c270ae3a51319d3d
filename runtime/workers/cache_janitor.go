package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// CacheJanitorWorker reclaims space in the video cache's value log.
// Badger only garbage-collects on demand, so without this worker expired
// lookup entries keep their disk space forever.
type CacheJanitorWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewCacheJanitorWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *CacheJanitorWorker {
	return &CacheJanitorWorker{log: log, db: db, interval: interval}
}

// Run triggers a value-log GC pass every interval. Each pass rewrites
// files until badger reports there is nothing left to reclaim.
func (w *CacheJanitorWorker) Run(ctx context.Context) error {
	w.log.Info("Starting cache janitor worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				err := w.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if stderrors.Is(err, badger.ErrNoRewrite) {
					break
				}
				w.log.Error("Value log GC failed", "err", err)
				break
			}
		}
	}
}
