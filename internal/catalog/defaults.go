package catalog

import "github.com/albapepper/rootly-data/internal/provider"

// Generic care guidance used when no provider supplies a value.
const (
	DefaultWatering   = "Weekly"
	DefaultSunlight   = "Bright indirect light"
	DefaultSoil       = "Well-draining potting mix"
	DefaultDifficulty = provider.DifficultyModerate
)

// DefaultCare returns a care record holding only the defaults.
func DefaultCare() Care {
	var c Care
	fillCareDefaults(&c)
	return c
}

// fillCareDefaults sets the defaulted fields that are still empty. Values
// already present are never replaced.
func fillCareDefaults(c *Care) {
	if c.WateringFrequency == nil {
		c.WateringFrequency = provider.Ptr(DefaultWatering)
	}
	if len(c.SunlightRequirements) == 0 {
		c.SunlightRequirements = []string{DefaultSunlight}
	}
	if c.SoilPreferences == nil {
		c.SoilPreferences = provider.Ptr(DefaultSoil)
	}
	if c.DifficultyLevel == nil {
		c.DifficultyLevel = provider.Ptr(DefaultDifficulty)
	}
	if c.PropagationMethods == nil {
		c.PropagationMethods = []string{}
	}
}
