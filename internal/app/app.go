// Package app wires providers, the merge engine and the Postgres store into
// a catalog coordinator. Shared by cmd/api and cmd/ingest.
package app

import (
	"log/slog"

	"github.com/albapepper/rootly-data/internal/catalog"
	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/provider/perenual"
	"github.com/albapepper/rootly-data/internal/provider/plantid"
	"github.com/albapepper/rootly-data/internal/provider/trefle"
)

// Catalog bundles the coordinator with the pieces commands report on.
type Catalog struct {
	*catalog.Coordinator
	Merger *catalog.Merger
	Store  *catalog.PostgresStore
}

// NewCatalog builds the catalog. Merge precedence is Perenual then Trefle;
// searches consult Trefle first. Providers without credentials stay wired
// and fail soft as unavailable.
func NewCatalog(cfg *config.Config, db catalog.DB, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	for name, p := range map[string]config.ProviderConfig{
		"perenual": cfg.Perenual,
		"trefle":   cfg.Trefle,
		"plant_id": cfg.PlantID,
	} {
		if !p.Enabled() {
			logger.Warn("Provider has no API key, calls will be skipped", "provider", name)
		}
	}

	perenualHandler := perenual.NewHandler(cfg.Perenual, logger)
	trefleHandler := trefle.NewHandler(cfg.Trefle, logger)
	plantIDHandler := plantid.NewHandler(cfg.PlantID, cfg.MaxImageBytes, logger)

	merger := catalog.NewMerger(
		[]catalog.Source{perenualHandler, trefleHandler},
		cfg.ConcurrentFetch,
		logger,
	)
	store := catalog.NewPostgresStore(db, logger)
	coordinator := catalog.NewCoordinator(
		store,
		merger,
		[]catalog.Searcher{trefleHandler, perenualHandler},
		plantIDHandler,
		logger,
	)

	return &Catalog{Coordinator: coordinator, Merger: merger, Store: store}
}
