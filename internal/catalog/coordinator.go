package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/rootly-data/internal/provider"
	"github.com/albapepper/rootly-data/internal/provider/plantid"
)

// Store persists plants and their care records.
type Store interface {
	FindByScientificName(ctx context.Context, name string) (*Entity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	// Create inserts plant and care in one transaction. A duplicate
	// scientific name yields ErrConflict.
	Create(ctx context.Context, e *Entity) error
	// Update locks the row, applies fn and writes plant and care in one
	// transaction. fn returning an error rolls everything back.
	Update(ctx context.Context, id uuid.UUID, fn func(*Entity) error) (*Entity, error)
	Search(ctx context.Context, query string, limit int) ([]Entity, error)
	ListStale(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

// Searcher finds plants by free text at a provider.
type Searcher interface {
	Name() provider.Name
	Search(ctx context.Context, query string, limit int) ([]provider.SearchHit, error)
}

// Identifier identifies plants and assesses their health from photos. A nil
// result without an error is treated as malformed.
type Identifier interface {
	Identify(ctx context.Context, image io.Reader) (*plantid.Identification, error)
	AssessHealth(ctx context.Context, image io.Reader) (*plantid.HealthAssessment, error)
}

// Coordinator applies find-or-create and update semantics over a Store.
type Coordinator struct {
	store      Store
	merger     *Merger
	searchers  []Searcher
	identifier Identifier
	now        func() time.Time
	logger     *slog.Logger
}

// NewCoordinator wires the catalog. searchers are consulted in order;
// identifier may be nil when photo identification is not configured.
func NewCoordinator(store Store, merger *Merger, searchers []Searcher, identifier Identifier, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:      store,
		merger:     merger,
		searchers:  searchers,
		identifier: identifier,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// --------------------------------------------------------------------------
// Find or create
// --------------------------------------------------------------------------

// FindOrCreate returns the plant with this exact scientific name, creating it
// from provider data when absent. Existing plants are returned unchanged.
func (c *Coordinator) FindOrCreate(ctx context.Context, scientificName string, ids ProviderIDs) (*Entity, error) {
	e, _, err := c.findOrCreate(ctx, scientificName, ids)
	return e, err
}

func (c *Coordinator) findOrCreate(ctx context.Context, scientificName string, ids ProviderIDs) (*Entity, bool, error) {
	name := strings.TrimSpace(scientificName)
	if name == "" {
		return nil, false, ErrInvalidName
	}

	existing, err := c.store.FindByScientificName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("find plant %q: %w", name, err)
	}

	merged, err := c.merger.Merge(ctx, name, ids)
	if err != nil {
		return nil, false, err
	}

	now := c.now()
	e := &Entity{Plant: merged.Plant, Care: merged.Care}
	e.ID = uuid.New()
	e.CreatedAt = now
	e.LastUpdated = now

	if err := c.store.Create(ctx, e); err != nil {
		if !errors.Is(err, ErrConflict) {
			return nil, false, fmt.Errorf("create plant %q: %w", name, err)
		}
		// Lost the race for the natural key: the winner's row is the answer.
		winner, rerr := c.store.FindByScientificName(ctx, name)
		if rerr != nil {
			return nil, false, fmt.Errorf("create plant %q: %w", name, ErrConflict)
		}
		c.logger.Info("Plant created concurrently, using existing row", "plant", name, "id", winner.ID)
		return winner, false, nil
	}

	c.logger.Info("Plant created", "plant", name, "id", e.ID, "sources", e.DataSources)
	return e, true, nil
}

// --------------------------------------------------------------------------
// Update
// --------------------------------------------------------------------------

// UpdateFromAPIs re-merges provider data for an existing plant and overwrites
// only the fields providers supplied. Unknown ids yield ErrNotFound without
// any provider call or write.
func (c *Coordinator) UpdateFromAPIs(ctx context.Context, id uuid.UUID, ids ProviderIDs) (*Entity, error) {
	e, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.update(ctx, e, ids)
}

// Refresh re-runs UpdateFromAPIs with the provider ids stored on the plant.
func (c *Coordinator) Refresh(ctx context.Context, id uuid.UUID) (*Entity, error) {
	e, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.update(ctx, e, e.Refs())
}

func (c *Coordinator) update(ctx context.Context, e *Entity, ids ProviderIDs) (*Entity, error) {
	merged, err := c.merger.Merge(ctx, e.ScientificName, ids)
	if err != nil {
		return nil, err
	}
	now := c.now()
	updated, err := c.store.Update(ctx, e.ID, func(cur *Entity) error {
		applyMerged(cur, merged, now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update plant %s: %w", e.ID, err)
	}
	c.logger.Info("Plant updated", "plant", updated.ScientificName, "id", updated.ID, "sources", updated.DataSources)
	return updated, nil
}

// applyMerged overwrites the fields providers supplied. ScientificName is
// never touched, data sources and provider refs only grow and toxicity flags
// only go from false to true.
func applyMerged(e *Entity, m Merged, now time.Time) {
	f := m.Fold

	setString(&e.CommonName, f.CommonName)
	setString(&e.Description, f.Description)
	setString(&e.ImageURL, f.ImageURL)

	setBool(&e.Indoor, f.Indoor)
	setBool(&e.Outdoor, f.Outdoor)
	setBool(&e.Tropical, f.Tropical)
	raiseBool(&e.PoisonousToHumans, f.PoisonousToHumans)
	raiseBool(&e.PoisonousToPets, f.PoisonousToPets)
	setBool(&e.Invasive, f.Invasive)
	setBool(&e.Rare, f.Rare)

	e.DataSources = unionSources(e.DataSources, m.Plant.DataSources)
	if e.ProviderRefs == nil {
		e.ProviderRefs = map[string]string{}
	}
	for k, v := range m.Plant.ProviderRefs {
		e.ProviderRefs[k] = v
	}
	e.LastUpdated = now

	fc := f.Care
	setString(&e.Care.WateringFrequency, fc.WateringFrequency)
	setString(&e.Care.SoilPreferences, fc.SoilPreferences)
	setString(&e.Care.TemperatureRange, fc.TemperatureRange)
	setString(&e.Care.DifficultyLevel, fc.DifficultyLevel)
	setString(&e.Care.GrowthRate, fc.GrowthRate)
	if len(fc.SunlightRequirements) > 0 {
		e.Care.SunlightRequirements = fc.SunlightRequirements
	}
	if len(fc.PropagationMethods) > 0 {
		e.Care.PropagationMethods = fc.PropagationMethods
	}
	fillCareDefaults(&e.Care)
}

func setString(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// raiseBool only ever sets a flag. Toxicity once reported by any provider
// is not cleared by another provider answering false.
func raiseBool(dst *bool, v *bool) {
	if v != nil && *v {
		*dst = true
	}
}

// --------------------------------------------------------------------------
// Import and search
// --------------------------------------------------------------------------

// Import searches providers for query and find-or-creates every distinct hit
// with the id that provider reported. Failures are collected, never fatal.
func (c *Coordinator) Import(ctx context.Context, query string, limit int) ImportResult {
	var result ImportResult
	seen := map[string]bool{}

	for _, s := range c.searchers {
		hits, err := s.Search(ctx, query, limit)
		if err != nil {
			result.AddErrorf("search %s: %v", s.Name(), err)
			continue
		}
		for _, hit := range hits {
			if limit > 0 && result.Created+result.Existing >= limit {
				return result
			}
			if hit.Result.ScientificName == nil {
				continue
			}
			name := *hit.Result.ScientificName
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			_, created, err := c.findOrCreate(ctx, name, ProviderIDs{hit.Source: hit.ExternalID})
			switch {
			case err != nil:
				result.AddErrorf("%s: %v", name, err)
			case created:
				result.Created++
			default:
				result.Existing++
			}
		}
	}

	c.logger.Info("Import complete", "query", query, "result", result.Summary())
	return result
}

// Search returns persisted matches first, then provider hits whose
// scientific name is not already listed. Provider failures only shorten the
// list.
func (c *Coordinator) Search(ctx context.Context, query string, limit int) ([]DisplayPlant, error) {
	if limit <= 0 {
		limit = 20
	}
	stored, err := c.store.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search plants: %w", err)
	}

	out := make([]DisplayPlant, 0, limit)
	seen := map[string]bool{}
	for _, e := range stored {
		out = append(out, Persisted{Entity: e})
		seen[strings.ToLower(e.ScientificName)] = true
	}

	for _, s := range c.searchers {
		if len(out) >= limit {
			break
		}
		hits, err := s.Search(ctx, query, limit)
		if err != nil {
			c.logger.Warn("Provider search failed", "provider", s.Name(), "query", query, "error", err)
			continue
		}
		for _, hit := range hits {
			if len(out) >= limit {
				break
			}
			dp := Unpersisted{Source: hit.Source, ExternalID: hit.ExternalID, Result: hit.Result}
			key := strings.ToLower(displayName(dp))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, dp)
		}
	}
	return out, nil
}

// ResolveIDs looks the scientific name up at each searcher and returns the
// ids of exact (case-insensitive) matches.
func (c *Coordinator) ResolveIDs(ctx context.Context, scientificName string) ProviderIDs {
	ids := ProviderIDs{}
	for _, s := range c.searchers {
		hits, err := s.Search(ctx, scientificName, 5)
		if err != nil {
			c.logger.Warn("Provider lookup failed", "provider", s.Name(), "plant", scientificName, "error", err)
			continue
		}
		for _, hit := range hits {
			if hit.Result.ScientificName != nil && strings.EqualFold(*hit.Result.ScientificName, scientificName) {
				ids[hit.Source] = hit.ExternalID
				break
			}
		}
	}
	return ids
}

// --------------------------------------------------------------------------
// Photos
// --------------------------------------------------------------------------

// Identify identifies the plant in image and find-or-creates it, resolving
// provider ids by name for new plants.
func (c *Coordinator) Identify(ctx context.Context, image io.Reader) (*plantid.Identification, *Entity, error) {
	if c.identifier == nil {
		return nil, nil, provider.Unavailable(provider.PlantID, "identification not configured", nil)
	}
	id, err := c.identifier.Identify(ctx, image)
	if err != nil {
		return nil, nil, err
	}
	if id == nil || strings.TrimSpace(id.ScientificName) == "" {
		return nil, nil, provider.Malformed(provider.PlantID, "identify: no scientific name", nil)
	}

	if e, err := c.store.FindByScientificName(ctx, id.ScientificName); err == nil {
		return id, e, nil
	} else if !errors.Is(err, ErrNotFound) {
		return id, nil, fmt.Errorf("find plant %q: %w", id.ScientificName, err)
	}

	e, err := c.FindOrCreate(ctx, id.ScientificName, c.ResolveIDs(ctx, id.ScientificName))
	if err != nil {
		return id, nil, err
	}
	return id, e, nil
}

// AssessHealth runs a health assessment on image.
func (c *Coordinator) AssessHealth(ctx context.Context, image io.Reader) (*plantid.HealthAssessment, error) {
	if c.identifier == nil {
		return nil, provider.Unavailable(provider.PlantID, "health assessment not configured", nil)
	}
	return c.identifier.AssessHealth(ctx, image)
}

// Get returns a plant by id.
func (c *Coordinator) Get(ctx context.Context, id uuid.UUID) (*Entity, error) {
	return c.store.FindByID(ctx, id)
}

// ListStale returns ids of plants not updated since before.
func (c *Coordinator) ListStale(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	return c.store.ListStale(ctx, before, limit)
}
