// Package refresh re-merges provider data into plants whose records have
// not been updated within a maximum age. Each stale plant is refreshed
// independently with the provider ids stored on it; one failing plant never
// stops the run.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/rootly-data/internal/catalog"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultMaxAge  = 30 * 24 * time.Hour
	defaultBatch   = 50
	defaultWorkers = 2
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Catalog is the subset of catalog.Coordinator a refresh run needs.
type Catalog interface {
	ListStale(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	Refresh(ctx context.Context, id uuid.UUID) (*catalog.Entity, error)
}

// Options bounds a refresh run. Zero values fall back to defaults.
type Options struct {
	MaxAge  time.Duration
	Batch   int
	Workers int
}

func (o Options) withDefaults() Options {
	if o.MaxAge <= 0 {
		o.MaxAge = defaultMaxAge
	}
	if o.Batch <= 0 {
		o.Batch = defaultBatch
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	return o
}

// Result tracks the outcome of refreshing a single plant.
type Result struct {
	PlantID        uuid.UUID
	ScientificName string
	Sources        []string
	Success        bool
	Error          string
	Duration       time.Duration
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	status := "ok"
	if !r.Success {
		status = "FAILED"
	}
	return fmt.Sprintf("plant=%s name=%q sources=%v status=%s dur=%s",
		r.PlantID, r.ScientificName, r.Sources, status, r.Duration.Round(time.Millisecond))
}

// RunResult tracks the outcome of a full refresh run.
type RunResult struct {
	Found     int
	Processed int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Errors    []string
	Results   []Result
}

// Summary returns a human-readable summary.
func (r *RunResult) Summary() string {
	return fmt.Sprintf("found=%d processed=%d succeeded=%d failed=%d errors=%d dur=%s",
		r.Found, r.Processed, r.Succeeded, r.Failed, len(r.Errors), r.Duration.Round(time.Millisecond))
}

// --------------------------------------------------------------------------
// Run
// --------------------------------------------------------------------------

// ProcessStale refreshes up to opts.Batch plants last updated before
// now - opts.MaxAge using a pool of opts.Workers goroutines.
func ProcessStale(ctx context.Context, cat Catalog, opts Options, now time.Time, logger *slog.Logger) RunResult {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	start := time.Now()
	var result RunResult

	ids, err := cat.ListStale(ctx, now.Add(-opts.MaxAge), opts.Batch)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list stale plants: %v", err))
		result.Duration = time.Since(start)
		return result
	}

	result.Found = len(ids)
	if len(ids) == 0 {
		logger.Info("No stale plants to refresh")
		result.Duration = time.Since(start)
		return result
	}

	logger.Info("Found stale plants", "count", len(ids), "max_age", opts.MaxAge)

	// Worker pool: one channel of ids, N workers
	workers := min(opts.Workers, len(ids))
	ch := make(chan uuid.UUID, len(ids))
	for _, id := range ids {
		ch <- id
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ch {
				if ctx.Err() != nil {
					return
				}
				r := refreshOne(ctx, cat, id)

				mu.Lock()
				result.Results = append(result.Results, r)
				result.Processed++
				if r.Success {
					result.Succeeded++
				} else {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("plant %s: %s", id, r.Error))
				}
				mu.Unlock()

				if !r.Success {
					logger.Warn("Plant refresh failed", "plant_id", id, "error", r.Error)
				}
			}
		}()
	}

	wg.Wait()
	result.Duration = time.Since(start)

	logger.Info("Refresh run complete", "summary", result.Summary())
	return result
}

func refreshOne(ctx context.Context, cat Catalog, id uuid.UUID) Result {
	start := time.Now()
	r := Result{PlantID: id}

	e, err := cat.Refresh(ctx, id)
	r.Duration = time.Since(start)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Success = true
	r.ScientificName = e.ScientificName
	r.Sources = e.DataSources
	return r
}
