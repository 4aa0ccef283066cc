package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/rootly-data/internal/catalog"
)

type fakeCatalog struct {
	mu        sync.Mutex
	stale     []uuid.UUID
	listErr   error
	failing   map[uuid.UUID]bool
	refreshed []uuid.UUID
	gotBefore time.Time
	gotLimit  int
}

func (f *fakeCatalog) ListStale(_ context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	f.gotBefore, f.gotLimit = before, limit
	return f.stale, f.listErr
}

func (f *fakeCatalog) Refresh(_ context.Context, id uuid.UUID) (*catalog.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, id)
	if f.failing[id] {
		return nil, catalog.ErrNotFound
	}
	e := &catalog.Entity{}
	e.ID = id
	e.ScientificName = "Ficus lyrata"
	e.DataSources = []string{"trefle"}
	return e, nil
}

func TestProcessStale(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	t.Run("Should refresh every stale plant and isolate failures", func(t *testing.T) {
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
		cat := &fakeCatalog{stale: ids, failing: map[uuid.UUID]bool{ids[2]: true}}

		res := ProcessStale(context.Background(), cat, Options{MaxAge: 24 * time.Hour, Batch: 10, Workers: 3}, now, nil)

		assert.Equal(t, now.Add(-24*time.Hour), cat.gotBefore)
		assert.Equal(t, 10, cat.gotLimit)
		assert.Equal(t, 4, res.Found)
		assert.Equal(t, 4, res.Processed)
		assert.Equal(t, 3, res.Succeeded)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], ids[2].String())
		assert.ElementsMatch(t, ids, cat.refreshed)
	})

	t.Run("Should apply defaults", func(t *testing.T) {
		cat := &fakeCatalog{}
		res := ProcessStale(context.Background(), cat, Options{}, now, nil)
		assert.Equal(t, now.Add(-defaultMaxAge), cat.gotBefore)
		assert.Equal(t, defaultBatch, cat.gotLimit)
		assert.Zero(t, res.Found)
		assert.Empty(t, res.Errors)
	})

	t.Run("Should report a listing failure", func(t *testing.T) {
		cat := &fakeCatalog{listErr: errors.New("connection refused")}
		res := ProcessStale(context.Background(), cat, Options{}, now, nil)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "connection refused")
		assert.Empty(t, cat.refreshed)
	})

	t.Run("Should stop picking up work once cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cat := &fakeCatalog{stale: []uuid.UUID{uuid.New(), uuid.New()}}
		res := ProcessStale(ctx, cat, Options{Workers: 1}, now, nil)
		assert.Equal(t, 2, res.Found)
		assert.Zero(t, res.Processed)
	})
}

func TestResultSummary(t *testing.T) {
	r := Result{PlantID: uuid.Nil, ScientificName: "Ficus lyrata", Success: false}
	assert.Contains(t, r.Summary(), "status=FAILED")
	rr := RunResult{Found: 2, Processed: 2, Succeeded: 2}
	assert.Contains(t, rr.Summary(), "found=2 processed=2 succeeded=2 failed=0")
}
