// Package maintenance runs periodic background tasks as Go tickers inside
// the API process. The only scheduled work is the stale plant refresh.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/rootly-data/internal/cache"
	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/refresh"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	RefreshInterval time.Duration // Stale plant refresh
	Refresh         refresh.Options
}

// FromConfig derives maintenance settings from the application config.
func FromConfig(cfg *config.Config) Config {
	return Config{
		RefreshInterval: cfg.RefreshInterval,
		Refresh: refresh.Options{
			MaxAge:  cfg.RefreshMaxAge,
			Batch:   cfg.RefreshBatch,
			Workers: cfg.RefreshWorkers,
		},
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, cat refresh.Catalog, appCache *cache.Cache, cfg Config, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Maintenance tickers started", "refresh", cfg.RefreshInterval)

	if cfg.RefreshInterval > 0 {
		t := time.NewTicker(cfg.RefreshInterval)
		defer t.Stop()
		go runLoop(ctx, t.C, func() { refreshStale(ctx, cat, appCache, cfg.Refresh, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// refreshStale re-merges stale plants and drops their cached responses.
func refreshStale(ctx context.Context, cat refresh.Catalog, appCache *cache.Cache, opts refresh.Options, logger *slog.Logger) refresh.RunResult {
	if logger == nil {
		logger = slog.Default()
	}
	res := refresh.ProcessStale(ctx, cat, opts, time.Now().UTC(), logger)
	if res.Succeeded == 0 || appCache == nil {
		return res
	}
	for _, r := range res.Results {
		if r.Success {
			appCache.Invalidate(cache.PlantKey(r.PlantID.String()))
		}
	}
	if n := appCache.InvalidatePrefix("search:"); n > 0 {
		logger.Info("Refresh: dropped cached searches", "count", n)
	}
	return res
}
