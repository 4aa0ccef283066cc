// Command ingest is the Rootly catalog ingestion CLI.
//
// Usage:
//
//	rootly-ingest migrate
//	rootly-ingest import plant --name "Monstera deliciosa" --perenual 1173 --trefle 178
//	rootly-ingest import search --query monstera --limit 20
//	rootly-ingest refresh stale --max-age 720h --batch 50 --workers 2
//	rootly-ingest refresh plant --id 6f1c2d36-2a8e-4d0f-9a55-0d4c8d8f1a01
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/rootly-data/internal/app"
	"github.com/albapepper/rootly-data/internal/catalog"
	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/db"
	"github.com/albapepper/rootly-data/internal/provider"
	"github.com/albapepper/rootly-data/internal/refresh"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "rootly-ingest",
		Short: "Rootly plant catalog ingestion CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(importCmd())
	root.AddCommand(refreshCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			start := time.Now()
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			logger.Info("Migrations applied", "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// import command
// --------------------------------------------------------------------------

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import plants from external providers",
	}
	cmd.AddCommand(importPlantCmd())
	cmd.AddCommand(importSearchCmd())
	return cmd
}

func importPlantCmd() *cobra.Command {
	var name, perenualID, trefleID string
	cmd := &cobra.Command{
		Use:   "plant",
		Short: "Find or create one plant by scientific name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			return runCatalog(func(ctx context.Context, cat *app.Catalog) error {
				e, err := cat.FindOrCreate(ctx, name, providerIDs(perenualID, trefleID))
				if err != nil {
					return fmt.Errorf("import %q: %w", name, err)
				}
				logger.Info("Plant imported", "id", e.ID, "plant", e.ScientificName, "sources", e.DataSources)
				return printJSON(e)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Scientific name")
	cmd.Flags().StringVar(&perenualID, "perenual", "", "Perenual species id")
	cmd.Flags().StringVar(&trefleID, "trefle", "", "Trefle plant id")
	return cmd
}

func importSearchCmd() *cobra.Command {
	var query string
	var limit int
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search providers and import every distinct hit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query is required")
			}
			return runCatalog(func(ctx context.Context, cat *app.Catalog) error {
				start := time.Now()
				result := cat.Import(ctx, query, limit)
				logger.Info("Import finished", "duration", time.Since(start).Round(time.Second), "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("import error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Search text")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum plants to import")
	return cmd
}

// --------------------------------------------------------------------------
// refresh command
// --------------------------------------------------------------------------

func refreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-merge provider data into existing plants",
	}
	cmd.AddCommand(refreshStaleCmd())
	cmd.AddCommand(refreshPlantCmd())
	return cmd
}

func refreshStaleCmd() *cobra.Command {
	var maxAge time.Duration
	var batch, workers int
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "Refresh plants not updated within --max-age",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(func(ctx context.Context, cat *app.Catalog) error {
				result := refresh.ProcessStale(ctx, cat, refresh.Options{
					MaxAge:  maxAge,
					Batch:   batch,
					Workers: workers,
				}, time.Now().UTC(), logger)
				if result.Failed > 0 {
					return fmt.Errorf("%d of %d plants failed to refresh", result.Failed, result.Processed)
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 30*24*time.Hour, "Refresh plants older than this")
	cmd.Flags().IntVar(&batch, "batch", 50, "Maximum plants per run")
	cmd.Flags().IntVar(&workers, "workers", 2, "Concurrent refresh workers")
	return cmd
}

func refreshPlantCmd() *cobra.Command {
	var rawID, perenualID, trefleID string
	cmd := &cobra.Command{
		Use:   "plant",
		Short: "Refresh one plant by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(rawID)
			if err != nil {
				return fmt.Errorf("--id must be a UUID: %w", err)
			}
			return runCatalog(func(ctx context.Context, cat *app.Catalog) error {
				var e *catalog.Entity
				ids := providerIDs(perenualID, trefleID)
				if len(ids) == 0 {
					e, err = cat.Refresh(ctx, id)
				} else {
					e, err = cat.UpdateFromAPIs(ctx, id, ids)
				}
				if err != nil {
					return fmt.Errorf("refresh %s: %w", id, err)
				}
				logger.Info("Plant refreshed", "id", e.ID, "plant", e.ScientificName, "sources", e.DataSources)
				return printJSON(e)
			})
		},
	}
	cmd.Flags().StringVar(&rawID, "id", "", "Plant UUID")
	cmd.Flags().StringVar(&perenualID, "perenual", "", "Override the stored Perenual id")
	cmd.Flags().StringVar(&trefleID, "trefle", "", "Override the stored Trefle id")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func providerIDs(perenualID, trefleID string) catalog.ProviderIDs {
	ids := catalog.ProviderIDs{}
	if perenualID != "" {
		ids[provider.Perenual] = perenualID
	}
	if trefleID != "" {
		ids[provider.Trefle] = trefleID
	}
	return ids
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runCatalog handles config loading, DB connection, catalog wiring and
// context cancellation.
func runCatalog(fn func(ctx context.Context, cat *app.Catalog) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, app.NewCatalog(cfg, pool.Pool, logger))
}
