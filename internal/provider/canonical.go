// Package provider defines canonical data types that all plant-data providers
// normalize into. These structs are the contract between provider handlers and
// the catalog merge engine. Providers output these and the catalog folds them.
//
// Adding a new provider means implementing functions that return these types.
// The merge engine and Postgres schema never change.
package provider

// Name identifies an upstream plant-data provider. It is also the value
// recorded in a plant's data_sources set.
type Name string

const (
	Perenual Name = "perenual"
	Trefle   Name = "trefle"
	PlantID  Name = "plant_id"
)

// Result is one provider's view of a plant before merging.
//
// Every field is optional. A nil pointer or nil slice means the provider said
// nothing about the field, which is distinct from an explicit false or "".
type Result struct {
	Source Name `json:"source"`

	ScientificName *string `json:"scientific_name,omitempty"`
	CommonName     *string `json:"common_name,omitempty"`
	Description    *string `json:"description,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`

	Indoor            *bool `json:"indoor,omitempty"`
	Outdoor           *bool `json:"outdoor,omitempty"`
	Tropical          *bool `json:"tropical,omitempty"`
	PoisonousToHumans *bool `json:"poisonous_to_humans,omitempty"`
	PoisonousToPets   *bool `json:"poisonous_to_pets,omitempty"`
	Invasive          *bool `json:"invasive,omitempty"`
	Rare              *bool `json:"rare,omitempty"`

	// Confidence is the identification probability (0.0–1.0), passed through
	// unmodified from the provider.
	Confidence *float64 `json:"confidence,omitempty"`

	Care CareResult `json:"care"`
}

// CareResult is the care-guidance half of a provider result.
type CareResult struct {
	WateringFrequency    *string  `json:"watering_frequency,omitempty"`
	SunlightRequirements []string `json:"sunlight_requirements,omitempty"`
	SoilPreferences      *string  `json:"soil_preferences,omitempty"`
	TemperatureRange     *string  `json:"temperature_range,omitempty"`
	DifficultyLevel      *string  `json:"difficulty_level,omitempty"`
	GrowthRate           *string  `json:"growth_rate,omitempty"`
	PropagationMethods   []string `json:"propagation_methods,omitempty"`
}

// IsEmpty reports whether the result carries no usable plant or care data.
func (r *Result) IsEmpty() bool {
	if r == nil {
		return true
	}
	for _, s := range []*string{r.ScientificName, r.CommonName, r.Description, r.ImageURL} {
		if s != nil {
			return false
		}
	}
	for _, b := range []*bool{r.Indoor, r.Outdoor, r.Tropical, r.PoisonousToHumans, r.PoisonousToPets, r.Invasive, r.Rare} {
		if b != nil {
			return false
		}
	}
	return r.Care.IsEmpty()
}

// IsEmpty reports whether no care field is set.
func (c CareResult) IsEmpty() bool {
	for _, s := range []*string{c.WateringFrequency, c.SoilPreferences, c.TemperatureRange, c.DifficultyLevel, c.GrowthRate} {
		if s != nil {
			return false
		}
	}
	return len(c.SunlightRequirements) == 0 && len(c.PropagationMethods) == 0
}

// SearchHit is a lightweight search/browse row from a provider. It has not
// been merged or persisted.
type SearchHit struct {
	Source     Name   `json:"source"`
	ExternalID string `json:"external_id"`
	Result     Result `json:"result"`
}

// Difficulty levels accepted in CareResult.DifficultyLevel.
const (
	DifficultyEasy         = "Easy"
	DifficultyModerate     = "Moderate"
	DifficultyIntermediate = "Intermediate"
	DifficultyDifficult    = "Difficult"
)

// ValidDifficulty reports whether s belongs to the canonical difficulty vocabulary.
func ValidDifficulty(s string) bool {
	switch s {
	case DifficultyEasy, DifficultyModerate, DifficultyIntermediate, DifficultyDifficult:
		return true
	}
	return false
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
