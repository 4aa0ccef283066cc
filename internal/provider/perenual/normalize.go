package perenual

import (
	"strings"

	"github.com/albapepper/rootly-data/internal/provider"
)

// NormalizeDetail maps a Perenual species object (detail or list row) to a
// provider result. List rows carry a subset of the detail fields; whatever is
// missing stays unset.
func NormalizeDetail(raw map[string]interface{}) *provider.Result {
	res := &provider.Result{
		Source:         provider.Perenual,
		ScientificName: provider.StringPtr(raw["scientific_name"]),
		CommonName:     provider.StringPtr(raw["common_name"]),
		Description:    provider.StringPtr(raw["description"]),
		ImageURL:       imageURL(raw["default_image"]),

		Indoor:            provider.BoolPtr(raw["indoor"]),
		Tropical:          provider.BoolPtr(raw["tropical"]),
		PoisonousToHumans: provider.BoolPtr(raw["poisonous_to_humans"]),
		PoisonousToPets:   provider.BoolPtr(raw["poisonous_to_pets"]),
		Invasive:          provider.BoolPtr(raw["invasive"]),
		Rare:              provider.BoolPtr(raw["rare"]),
	}

	res.Care = provider.CareResult{
		WateringFrequency:    provider.StringPtr(raw["watering"]),
		SunlightRequirements: provider.ExtractStrings(raw["sunlight"]),
		GrowthRate:           provider.StringPtr(raw["growth_rate"]),
		PropagationMethods:   provider.ExtractStrings(raw["propagation"]),
	}
	if soil := provider.ExtractStrings(raw["soil"]); len(soil) > 0 {
		res.Care.SoilPreferences = provider.Ptr(strings.Join(soil, ", "))
	}
	if level, ok := provider.ExtractString(raw["care_level"]); ok {
		if d, ok := difficultyForCareLevel(level); ok {
			res.Care.DifficultyLevel = provider.Ptr(d)
		}
	}
	return res
}

// difficultyForCareLevel maps Perenual's care_level onto the canonical
// difficulty vocabulary. Unknown levels stay unset.
func difficultyForCareLevel(level string) (string, bool) {
	switch strings.ToLower(level) {
	case "low", "easy":
		return provider.DifficultyEasy, true
	case "medium", "moderate":
		return provider.DifficultyModerate, true
	case "high", "hard", "difficult":
		return provider.DifficultyDifficult, true
	}
	return "", false
}

// imageURL picks the best image from default_image, preferring the original.
func imageURL(v interface{}) *string {
	img, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	for _, key := range []string{"original_url", "regular_url", "medium_url", "small_url"} {
		// upgrade_access.jpg is the free-tier placeholder image
		if s := provider.StringPtr(img[key]); s != nil && !strings.Contains(*s, "upgrade_access") {
			return s
		}
	}
	return nil
}
