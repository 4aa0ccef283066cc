package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/rootly-data/internal/config"
)

// DB is the minimal database interface PostgresStore depends on (pgxpool or
// pgxmock).
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Prepared statement names. The SQL is registered on every pool connection
// by internal/db.
const (
	stmtPlantByID       = "plant_by_id"
	stmtPlantByIDForUpd = "plant_by_id_for_update"
	stmtPlantByName     = "plant_by_name"
	stmtPlantSearch     = "plant_search"
	stmtPlantStale      = "plant_stale"
	stmtPlantInsert     = "plant_insert"
	stmtPlantUpdate     = "plant_update"
	stmtCareUpsert      = "plant_care_upsert"
)

const uniqueViolationCode = "23505"

const plantSelectColumns = "p.id, p.scientific_name, p.common_name, p.description, p.image_url, " +
	"p.indoor, p.outdoor, p.tropical, p.poisonous_to_humans, p.poisonous_to_pets, p.invasive, p.rare, " +
	"p.data_sources, p.provider_refs, p.last_updated, p.created_at, " +
	"c.watering_frequency, c.sunlight_requirements, c.soil_preferences, c.temperature_range, " +
	"c.difficulty_level, c.growth_rate, c.propagation_methods"

const plantFromJoin = " FROM " + config.PlantsTable + " p LEFT JOIN " + config.PlantCareTable + " c ON c.plant_id = p.id"

// PreparedStatements returns the SQL the store runs, keyed by statement name.
func PreparedStatements() map[string]string {
	return map[string]string{
		stmtPlantByID:       "SELECT " + plantSelectColumns + plantFromJoin + " WHERE p.id = $1",
		stmtPlantByIDForUpd: "SELECT " + plantSelectColumns + plantFromJoin + " WHERE p.id = $1 FOR UPDATE OF p",
		stmtPlantByName:     "SELECT " + plantSelectColumns + plantFromJoin + " WHERE p.scientific_name = $1",
		stmtPlantSearch: "SELECT " + plantSelectColumns + plantFromJoin +
			" WHERE p.scientific_name ILIKE $1 OR p.common_name ILIKE $1 ORDER BY p.scientific_name LIMIT $2",
		stmtPlantStale: "SELECT id FROM " + config.PlantsTable +
			" WHERE last_updated < $1 ORDER BY last_updated, id LIMIT $2",
		stmtPlantInsert: `INSERT INTO ` + config.PlantsTable + ` (
			id, scientific_name, common_name, description, image_url,
			indoor, outdoor, tropical, poisonous_to_humans, poisonous_to_pets,
			invasive, rare, data_sources, provider_refs, last_updated, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		stmtPlantUpdate: `UPDATE ` + config.PlantsTable + ` SET
			common_name = $2, description = $3, image_url = $4,
			indoor = $5, outdoor = $6, tropical = $7,
			poisonous_to_humans = $8, poisonous_to_pets = $9, invasive = $10, rare = $11,
			data_sources = $12, provider_refs = $13, last_updated = $14
		WHERE id = $1`,
		stmtCareUpsert: `INSERT INTO ` + config.PlantCareTable + ` (
			plant_id, watering_frequency, sunlight_requirements, soil_preferences,
			temperature_range, difficulty_level, growth_rate, propagation_methods
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (plant_id) DO UPDATE SET
			watering_frequency = EXCLUDED.watering_frequency,
			sunlight_requirements = EXCLUDED.sunlight_requirements,
			soil_preferences = EXCLUDED.soil_preferences,
			temperature_range = EXCLUDED.temperature_range,
			difficulty_level = EXCLUDED.difficulty_level,
			growth_rate = EXCLUDED.growth_rate,
			propagation_methods = EXCLUDED.propagation_methods,
			updated_at = NOW()`,
	}
}

// PostgresStore implements Store on Postgres.
type PostgresStore struct {
	db     DB
	logger *slog.Logger
}

// NewPostgresStore creates a store. db must have PreparedStatements
// registered (internal/db does this for pools).
func NewPostgresStore(db DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) withTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Warn("Transaction rollback failed after panic", "error", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Warn("Transaction rollback failed", "error", rbErr)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()
	err = fn(tx)
	return err
}

// FindByScientificName returns the plant with exactly this name.
func (s *PostgresStore) FindByScientificName(ctx context.Context, name string) (*Entity, error) {
	return scanEntity(s.db.QueryRow(ctx, stmtPlantByName, name))
}

// FindByID returns the plant with this id.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Entity, error) {
	return scanEntity(s.db.QueryRow(ctx, stmtPlantByID, id))
}

// Create inserts plant and care atomically.
func (s *PostgresStore) Create(ctx context.Context, e *Entity) error {
	refs, err := marshalRefs(e.ProviderRefs)
	if err != nil {
		return err
	}
	return s.withTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmtPlantInsert,
			e.ID, e.ScientificName, e.CommonName, e.Description, e.ImageURL,
			e.Indoor, e.Outdoor, e.Tropical, e.PoisonousToHumans, e.PoisonousToPets,
			e.Invasive, e.Rare, nonNilStrings(e.DataSources), refs, e.LastUpdated, e.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return ErrConflict
			}
			return fmt.Errorf("insert plant: %w", err)
		}
		return upsertCare(ctx, tx, e.ID, e.Care)
	})
}

// Update locks the plant row, applies fn and writes plant and care.
func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, fn func(*Entity) error) (*Entity, error) {
	var out *Entity
	err := s.withTransaction(ctx, func(tx pgx.Tx) error {
		e, err := scanEntity(tx.QueryRow(ctx, stmtPlantByIDForUpd, id))
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		refs, err := marshalRefs(e.ProviderRefs)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, stmtPlantUpdate,
			e.ID, e.CommonName, e.Description, e.ImageURL,
			e.Indoor, e.Outdoor, e.Tropical,
			e.PoisonousToHumans, e.PoisonousToPets, e.Invasive, e.Rare,
			nonNilStrings(e.DataSources), refs, e.LastUpdated,
		); err != nil {
			return fmt.Errorf("update plant: %w", err)
		}
		if err := upsertCare(ctx, tx, e.ID, e.Care); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches scientific or common names case-insensitively.
func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]Entity, error) {
	rows, err := s.db.Query(ctx, stmtPlantSearch, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search plants: %w", err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ListStale returns ids of plants last updated before the cutoff, oldest
// first.
func (s *PostgresStore) ListStale(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, stmtPlantStale, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale plants: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale plant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func upsertCare(ctx context.Context, tx pgx.Tx, plantID uuid.UUID, c Care) error {
	_, err := tx.Exec(ctx, stmtCareUpsert,
		plantID, c.WateringFrequency, nonNilStrings(c.SunlightRequirements), c.SoilPreferences,
		c.TemperatureRange, c.DifficultyLevel, c.GrowthRate, nonNilStrings(c.PropagationMethods),
	)
	if err != nil {
		return fmt.Errorf("upsert care: %w", err)
	}
	return nil
}

func scanEntity(row pgx.Row) (*Entity, error) {
	var (
		e    Entity
		refs []byte
	)
	err := row.Scan(
		&e.ID, &e.ScientificName, &e.CommonName, &e.Description, &e.ImageURL,
		&e.Indoor, &e.Outdoor, &e.Tropical, &e.PoisonousToHumans, &e.PoisonousToPets,
		&e.Invasive, &e.Rare, &e.DataSources, &refs, &e.LastUpdated, &e.CreatedAt,
		&e.Care.WateringFrequency, &e.Care.SunlightRequirements, &e.Care.SoilPreferences,
		&e.Care.TemperatureRange, &e.Care.DifficultyLevel, &e.Care.GrowthRate,
		&e.Care.PropagationMethods,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan plant: %w", err)
	}
	e.ProviderRefs = map[string]string{}
	if len(refs) > 0 {
		if err := json.Unmarshal(refs, &e.ProviderRefs); err != nil {
			return nil, fmt.Errorf("decode provider refs: %w", err)
		}
	}
	e.DataSources = nonNilStrings(e.DataSources)
	return &e, nil
}

func marshalRefs(refs map[string]string) ([]byte, error) {
	if refs == nil {
		refs = map[string]string{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("encode provider refs: %w", err)
	}
	return b, nil
}

// likePattern escapes LIKE wildcards in q and wraps it for a contains match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}
