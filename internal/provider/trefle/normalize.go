package trefle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/albapepper/rootly-data/internal/provider"
)

// Growth is the subset of Trefle's main_species growth/specification data the
// care mapping uses. Nil means the field was absent.
type Growth struct {
	Light               *float64
	AtmosphericHumidity *float64
	SoilHumidity        *float64
	PHMinimum           *float64
	PHMaximum           *float64
	TempMinimumC        *float64
	TempMaximumC        *float64
	GrowthRate          *string
	Toxicity            *string
}

// NormalizeDetail maps a Trefle /plants/{id} "data" object to a provider
// result. Missing nested objects simply leave fields unset.
func NormalizeDetail(data map[string]interface{}) *provider.Result {
	res := &provider.Result{
		Source:         provider.Trefle,
		ScientificName: provider.StringPtr(data["scientific_name"]),
		CommonName:     provider.StringPtr(data["common_name"]),
		ImageURL:       provider.StringPtr(data["image_url"]),
	}
	if res.CommonName == nil {
		res.CommonName = provider.StringPtr(provider.Lookup(data, "main_species", "common_name"))
	}
	if res.ImageURL == nil {
		res.ImageURL = provider.StringPtr(provider.Lookup(data, "main_species", "image_url"))
	}
	if family, ok := provider.ExtractString(data["family"]); ok {
		res.Description = provider.Ptr(fmt.Sprintf("A plant in the %s family.", family))
	}

	g := ExtractGrowth(data)
	res.Care = MapGrowth(g)

	if g.Light != nil && validLight(*g.Light) {
		res.Indoor = provider.Ptr(*g.Light <= 6)
		res.Outdoor = provider.Ptr(*g.Light >= 6)
	}
	if g.AtmosphericHumidity != nil {
		res.Tropical = provider.Ptr(*g.AtmosphericHumidity > 6)
	}
	if g.Toxicity != nil {
		switch strings.ToLower(*g.Toxicity) {
		case "none":
			res.PoisonousToHumans = provider.Ptr(false)
		case "low", "medium", "high":
			res.PoisonousToHumans = provider.Ptr(true)
		}
	}
	return res
}

// ExtractGrowth pulls growth and specification values from a Trefle plant
// object. Both "minimum_temperature" and the older "temperature_minimum" keys
// are accepted.
func ExtractGrowth(data map[string]interface{}) Growth {
	growth, _ := provider.Lookup(data, "main_species", "growth").(map[string]interface{})
	specs, _ := provider.Lookup(data, "main_species", "specifications").(map[string]interface{})

	num := func(m map[string]interface{}, keys ...string) *float64 {
		for _, k := range keys {
			if v, ok := provider.ExtractValue(m[k]); ok {
				return &v
			}
		}
		return nil
	}
	str := func(m map[string]interface{}, key string) *string {
		if m == nil {
			return nil
		}
		if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
			s := strings.TrimSpace(v)
			return &s
		}
		return nil
	}

	return Growth{
		Light:               num(growth, "light"),
		AtmosphericHumidity: num(growth, "atmospheric_humidity"),
		SoilHumidity:        num(growth, "soil_humidity"),
		PHMinimum:           num(growth, "ph_minimum"),
		PHMaximum:           num(growth, "ph_maximum"),
		TempMinimumC:        num(growth, "minimum_temperature", "temperature_minimum"),
		TempMaximumC:        num(growth, "maximum_temperature", "temperature_maximum"),
		GrowthRate:          str(specs, "growth_rate"),
		Toxicity:            str(specs, "toxicity"),
	}
}

// MapGrowth translates Trefle's numeric growth scales into the canonical care
// vocabulary.
func MapGrowth(g Growth) provider.CareResult {
	var care provider.CareResult

	if g.Light != nil {
		care.SunlightRequirements = sunlightForLight(*g.Light)
	}

	if g.PHMinimum != nil && g.PHMaximum != nil {
		care.SoilPreferences = provider.Ptr(soilForPH(*g.PHMinimum))
	}

	switch {
	case g.TempMinimumC != nil && g.TempMaximumC != nil:
		care.TemperatureRange = provider.Ptr(fmt.Sprintf("%s°C to %s°C",
			formatNum(*g.TempMinimumC), formatNum(*g.TempMaximumC)))
	case g.TempMinimumC != nil:
		care.TemperatureRange = provider.Ptr(temperatureBand(*g.TempMinimumC))
	}

	if g.SoilHumidity != nil {
		care.WateringFrequency = provider.Ptr(wateringForSoilHumidity(*g.SoilHumidity))
	}

	if g.GrowthRate != nil {
		care.GrowthRate = provider.Ptr(*g.GrowthRate)
		if d, ok := difficultyForGrowthRate(*g.GrowthRate); ok {
			care.DifficultyLevel = provider.Ptr(d)
		}
	}
	return care
}

func validLight(light float64) bool {
	return light >= 0 && light <= 10
}

// sunlightForLight maps Trefle's 0 (no light) to 10 (very intensive) scale.
func sunlightForLight(light float64) []string {
	if !validLight(light) {
		return nil
	}
	switch l := int(light); {
	case l == 0:
		return []string{"Full shade"}
	case l <= 2:
		return []string{"Partial shade"}
	case l <= 5:
		return []string{"Partial sun"}
	default:
		return []string{"Full sun"}
	}
}

func soilForPH(phMin float64) string {
	switch {
	case phMin < 6.0:
		return "Acidic soil (pH < 6.0)"
	case phMin >= 7.0:
		return "Alkaline soil (pH > 7.0)"
	default:
		return "Neutral soil (pH 6.0-7.0)"
	}
}

func temperatureBand(minC float64) string {
	switch {
	case minC < 10:
		return "Cool (10-18°C / 50-65°F)"
	case minC < 18:
		return "Moderate (15-24°C / 60-75°F)"
	default:
		return "Warm (20-30°C / 70-85°F)"
	}
}

// wateringForSoilHumidity maps Trefle's 0–10 soil humidity requirement.
func wateringForSoilHumidity(h float64) string {
	switch {
	case h <= 3:
		return "Low - once every 7-10 days"
	case h <= 7:
		return "Medium - once every 3-5 days"
	default:
		return "High - daily to every other day"
	}
}

// difficultyForGrowthRate treats faster growers as more forgiving of care
// mistakes: high → Easy, moderate → Intermediate, low → Difficult.
func difficultyForGrowthRate(rate string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(rate)) {
	case "high", "rapid", "fast":
		return provider.DifficultyEasy, true
	case "moderate", "medium":
		return provider.DifficultyIntermediate, true
	case "low", "slow":
		return provider.DifficultyDifficult, true
	}
	return "", false
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
