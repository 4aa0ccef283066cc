// Package handler provides HTTP handlers for all API endpoints.
// Handlers delegate to the catalog coordinator and render its entities as
// JSON; plant lookups and searches go through the response cache.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/albapepper/rootly-data/internal/api/respond"
	"github.com/albapepper/rootly-data/internal/cache"
	"github.com/albapepper/rootly-data/internal/catalog"
	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/provider"
	"github.com/albapepper/rootly-data/internal/provider/plantid"
)

// Catalog is the subset of catalog.Coordinator the handlers use.
type Catalog interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Entity, error)
	FindOrCreate(ctx context.Context, scientificName string, ids catalog.ProviderIDs) (*catalog.Entity, error)
	UpdateFromAPIs(ctx context.Context, id uuid.UUID, ids catalog.ProviderIDs) (*catalog.Entity, error)
	Refresh(ctx context.Context, id uuid.UUID) (*catalog.Entity, error)
	Search(ctx context.Context, query string, limit int) ([]catalog.DisplayPlant, error)
	Identify(ctx context.Context, image io.Reader) (*plantid.Identification, *catalog.Entity, error)
	AssessHealth(ctx context.Context, image io.Reader) (*plantid.HealthAssessment, error)
}

// HealthChecker verifies database connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	catalog  Catalog
	db       HealthChecker
	cache    *cache.Cache
	cfg      *config.Config
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(cat Catalog, db HealthChecker, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog:  cat,
		db:       db,
		cache:    c,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and configured providers.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Rootly Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"providers": map[string]bool{
			string(provider.Perenual): h.cfg.Perenual.Enabled(),
			string(provider.Trefle):   h.cfg.Trefle.Enabled(),
			string(provider.PlantID):  h.cfg.PlantID.Enabled(),
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError maps catalog and provider errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Plant not found")
	case errors.Is(err, catalog.ErrConflict):
		respond.WriteError(w, http.StatusConflict, "CONFLICT", "Plant was modified concurrently, retry the request")
	case errors.Is(err, catalog.ErrInvalidName):
		respond.WriteError(w, http.StatusBadRequest, "INVALID_NAME", "scientific_name must not be empty")
	case errors.Is(err, provider.ErrInvalidImage):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_IMAGE", "Upload is not a usable image", err.Error())
	case errors.Is(err, provider.ErrUnavailable), errors.Is(err, provider.ErrMalformed):
		respond.WriteErrorDetail(w, http.StatusBadGateway, "PROVIDER_ERROR", "Upstream provider failed", err.Error())
	default:
		h.logger.Error("Request failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}

// validationError renders validator failures as a 400.
func validationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		respond.WriteErrorDetail(w, http.StatusBadRequest, "VALIDATION_FAILED",
			"Invalid request", fe.Namespace()+" failed on '"+fe.Tag()+"'")
		return
	}
	respond.WriteErrorDetail(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request", err.Error())
}
