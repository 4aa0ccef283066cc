package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/albapepper/rootly-data/internal/cache"
	"github.com/albapepper/rootly-data/internal/catalog"
	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/provider/plantid"
)

type stubCatalog struct{}

func (stubCatalog) Get(context.Context, uuid.UUID) (*catalog.Entity, error) {
	return nil, catalog.ErrNotFound
}

func (stubCatalog) FindOrCreate(context.Context, string, catalog.ProviderIDs) (*catalog.Entity, error) {
	return nil, catalog.ErrInvalidName
}

func (stubCatalog) UpdateFromAPIs(context.Context, uuid.UUID, catalog.ProviderIDs) (*catalog.Entity, error) {
	return nil, catalog.ErrNotFound
}

func (stubCatalog) Refresh(context.Context, uuid.UUID) (*catalog.Entity, error) {
	return nil, catalog.ErrNotFound
}

func (stubCatalog) Search(context.Context, string, int) ([]catalog.DisplayPlant, error) {
	return nil, nil
}

func (stubCatalog) Identify(context.Context, io.Reader) (*plantid.Identification, *catalog.Entity, error) {
	return nil, nil, nil
}

func (stubCatalog) AssessHealth(context.Context, io.Reader) (*plantid.HealthAssessment, error) {
	return plantid.Healthy(), nil
}

type stubDB struct{}

func (stubDB) HealthCheck(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		CORSAllowOrigins:  []string{"http://localhost:5173"},
		RateLimitEnabled:  true,
		RateLimitRequests: 4,
		RateLimitWindow:   time.Minute,
		MaxImageBytes:     1 << 20,
	}
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(stubCatalog{}, stubDB{}, cache.New(false), testConfig(), nil)

	t.Run("Should mount health and plant routes", func(t *testing.T) {
		cases := []struct {
			method, path string
			want         int
		}{
			{http.MethodGet, "/health", http.StatusOK},
			{http.MethodGet, "/health/db", http.StatusOK},
			{http.MethodGet, "/api/v1/plants/" + uuid.NewString(), http.StatusNotFound},
			{http.MethodGet, "/api/v1/plants/search?q=ficus", http.StatusOK},
		}
		for i, tc := range cases {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.RemoteAddr = fmt.Sprintf("10.0.0.%d:1234", i+1)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code, tc.path)
			assert.NotEmpty(t, rec.Header().Get("X-Process-Time"), tc.path)
		}
	})

	t.Run("Should answer CORS preflight for allowed origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/plants/import", nil)
		req.RemoteAddr = "10.0.1.1:1234"
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(2, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, hit("192.0.2.1:1001"))
	assert.Equal(t, http.StatusNoContent, hit("192.0.2.2:1000"))
}
