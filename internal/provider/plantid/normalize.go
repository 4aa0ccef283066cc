package plantid

import (
	"strings"

	"github.com/albapepper/rootly-data/internal/provider"
)

// Health thresholds.
const (
	HealthyProbabilityThreshold = 0.7
	DiseaseProbabilityThreshold = 0.3
)

const (
	healthyDiagnosis = "Healthy plant"
	healthyTreatment = "Continue regular care"
	defaultTreatment = "Consult a plant specialist"
	unknownDiagnosis = "Unknown issue"
)

// Identification is the top Plant.id suggestion for an image.
type Identification struct {
	ScientificName string   `json:"scientific_name"`
	CommonNames    []string `json:"common_names"`
	Confidence     float64  `json:"confidence"`
	Family         string   `json:"family,omitempty"`
	Genus          string   `json:"genus,omitempty"`
	Description    string   `json:"description,omitempty"`
	URL            string   `json:"url,omitempty"`
}

// Result converts the identification into a provider result so it can be
// shown as an unpersisted plant.
func (i *Identification) Result() provider.Result {
	res := provider.Result{
		Source:         provider.PlantID,
		ScientificName: provider.Ptr(i.ScientificName),
		Confidence:     provider.Ptr(i.Confidence),
	}
	if len(i.CommonNames) > 0 {
		res.CommonName = provider.Ptr(i.CommonNames[0])
	}
	if i.Description != "" {
		res.Description = provider.Ptr(i.Description)
	}
	return res
}

// HealthAssessment is the normalized health diagnosis for an image.
type HealthAssessment struct {
	IsHealthy  bool     `json:"is_healthy"`
	Diseases   []string `json:"diseases"`
	Diagnosis  string   `json:"diagnosis"`
	Symptoms   []string `json:"symptoms,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Treatment  string   `json:"treatment_recommendations"`
}

// Healthy returns the fixed healthy result.
func Healthy() *HealthAssessment {
	return &HealthAssessment{
		IsHealthy: true,
		Diseases:  []string{},
		Diagnosis: healthyDiagnosis,
		Treatment: healthyTreatment,
	}
}

// NormalizeIdentification picks the highest-probability suggestion; the
// first one wins ties. ok is false when no suggestion carries a usable name.
func NormalizeIdentification(raw map[string]interface{}) (*Identification, bool) {
	suggestions, _ := raw["suggestions"].([]interface{})

	var best map[string]interface{}
	bestProb := -1.0
	for _, s := range suggestions {
		obj, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := provider.ExtractString(obj["plant_name"]); !ok {
			continue
		}
		p, _ := provider.ExtractValue(obj["probability"])
		if p > bestProb {
			best, bestProb = obj, p
		}
	}
	if best == nil {
		return nil, false
	}

	name, _ := provider.ExtractString(best["plant_name"])
	details, _ := best["plant_details"].(map[string]interface{})
	id := &Identification{
		ScientificName: name,
		CommonNames:    provider.ExtractStrings(details["common_names"]),
		Confidence:     bestProb,
	}
	if id.CommonNames == nil {
		id.CommonNames = []string{}
	}
	id.Family, _ = provider.ExtractString(provider.Lookup(details, "taxonomy", "family"))
	id.Genus, _ = provider.ExtractString(provider.Lookup(details, "taxonomy", "genus"))
	id.Description, _ = provider.ExtractString(provider.Lookup(details, "wiki_description", "value"))
	id.URL, _ = provider.ExtractString(details["url"])
	return id, true
}

// NormalizeHealth maps a /health_assessment response.
//
// A missing assessment, a confident healthy flag, or no disease above
// DiseaseProbabilityThreshold all short-circuit to Healthy(). Otherwise the
// most probable disease is the diagnosis.
func NormalizeHealth(raw map[string]interface{}) *HealthAssessment {
	assessment, ok := raw["health_assessment"].(map[string]interface{})
	if !ok {
		return Healthy()
	}
	diseases, ok := assessment["diseases"].([]interface{})
	if !ok {
		return Healthy()
	}

	isHealthy, _ := provider.ExtractBool(assessment["is_healthy"])
	healthyProb, _ := provider.ExtractValue(assessment["is_healthy_probability"])
	if isHealthy && healthyProb > HealthyProbabilityThreshold {
		return Healthy()
	}

	var (
		primary     map[string]interface{}
		primaryProb = -1.0
		names       []string
	)
	for _, d := range diseases {
		obj, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		p, _ := provider.ExtractValue(obj["probability"])
		if p > primaryProb {
			primary, primaryProb = obj, p
		}
		if p > DiseaseProbabilityThreshold {
			if name, ok := provider.ExtractString(obj["name"]); ok {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return Healthy()
	}

	out := &HealthAssessment{
		IsHealthy:  false,
		Diseases:   names,
		Diagnosis:  unknownDiagnosis,
		Confidence: provider.Ptr(primaryProb),
		Treatment:  defaultTreatment,
	}
	if name, ok := provider.ExtractString(primary["name"]); ok {
		out.Diagnosis = name
	}
	out.Symptoms = provider.ExtractStrings(firstOf(primary,
		[]string{"classification", "symptoms"},
		[]string{"disease_details", "classification", "symptoms"}))
	if t := treatment(primary); t != "" {
		out.Treatment = t
	}
	return out
}

// treatment prefers a free-text overview and falls back to the first advice
// list Plant.id returns (prevention, biological, chemical).
func treatment(disease map[string]interface{}) string {
	t := firstOf(disease, []string{"treatment"}, []string{"disease_details", "treatment"})
	switch v := t.(type) {
	case string:
		s, _ := provider.ExtractString(v)
		return s
	case map[string]interface{}:
		if s, ok := provider.ExtractString(v["overview"]); ok {
			return s
		}
		for _, key := range []string{"prevention", "biological", "chemical"} {
			if items := provider.ExtractStrings(v[key]); len(items) > 0 {
				return strings.Join(items, " ")
			}
		}
	}
	return ""
}

func firstOf(m map[string]interface{}, paths ...[]string) interface{} {
	for _, p := range paths {
		if v := provider.Lookup(m, p...); v != nil {
			return v
		}
	}
	return nil
}
