// Package catalog reconciles provider data into canonical plant records and
// persists them idempotently by scientific name.
//
// The Merger folds provider results in a fixed precedence order, the
// Coordinator applies find-or-create and refresh semantics on top of a Store,
// and DisplayPlant lets callers render persisted and unpersisted plants alike.
package catalog

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/rootly-data/internal/provider"
)

var (
	// ErrNotFound is returned when the target plant does not exist.
	ErrNotFound = errors.New("plant not found")
	// ErrConflict is returned when a concurrent create won the natural key.
	ErrConflict = errors.New("plant already exists")
	// ErrInvalidName is returned for an empty scientific name.
	ErrInvalidName = errors.New("scientific name is required")
)

// ProviderIDs maps a provider to the external id to fetch from it. Empty ids
// are ignored.
type ProviderIDs map[provider.Name]string

// Plant is the canonical plant record.
type Plant struct {
	ID             uuid.UUID `json:"id"`
	ScientificName string    `json:"scientific_name"`
	CommonName     *string   `json:"common_name"`
	Description    *string   `json:"description"`
	ImageURL       *string   `json:"image_url"`

	Indoor            bool `json:"indoor"`
	Outdoor           bool `json:"outdoor"`
	Tropical          bool `json:"tropical"`
	PoisonousToHumans bool `json:"poisonous_to_humans"`
	PoisonousToPets   bool `json:"poisonous_to_pets"`
	Invasive          bool `json:"invasive"`
	Rare              bool `json:"rare"`

	// DataSources is kept sorted and deduplicated.
	DataSources []string `json:"data_sources"`
	// ProviderRefs records the external id last used per provider.
	ProviderRefs map[string]string `json:"provider_refs"`

	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Care is the canonical care record, 1:1 with a plant.
type Care struct {
	WateringFrequency    *string  `json:"watering_frequency"`
	SunlightRequirements []string `json:"sunlight_requirements"`
	SoilPreferences      *string  `json:"soil_preferences"`
	TemperatureRange     *string  `json:"temperature_range"`
	DifficultyLevel      *string  `json:"difficulty_level"`
	GrowthRate           *string  `json:"growth_rate"`
	PropagationMethods   []string `json:"propagation_methods"`
}

// Entity is a persisted plant with its care record.
type Entity struct {
	Plant
	Care Care `json:"care"`
}

// Refs returns the stored provider references as ProviderIDs.
func (e *Entity) Refs() ProviderIDs {
	ids := make(ProviderIDs, len(e.ProviderRefs))
	for k, v := range e.ProviderRefs {
		ids[provider.Name(k)] = v
	}
	return ids
}

// unionSources merges two source sets into a sorted, deduplicated slice.
func unionSources(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if s != "" && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
