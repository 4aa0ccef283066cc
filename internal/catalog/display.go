package catalog

import (
	"github.com/google/uuid"

	"github.com/albapepper/rootly-data/internal/provider"
)

// DisplayPlant is a plant shown to a user: either a persisted entity or a
// provider hit that has not been imported yet.
type DisplayPlant interface {
	displayPlant()
}

// Persisted wraps a stored entity.
type Persisted struct {
	Entity Entity
}

// Unpersisted wraps a provider search or identification hit.
type Unpersisted struct {
	Source     provider.Name
	ExternalID string
	Result     provider.Result
}

func (Persisted) displayPlant()   {}
func (Unpersisted) displayPlant() {}

// PlantView is the single rendering shape for both variants.
type PlantView struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	Persisted      bool       `json:"persisted"`
	Source         string     `json:"source,omitempty"`
	ExternalID     string     `json:"external_id,omitempty"`
	ScientificName string     `json:"scientific_name"`
	CommonName     *string    `json:"common_name"`
	Description    *string    `json:"description"`
	ImageURL       *string    `json:"image_url"`
	DataSources    []string   `json:"data_sources"`
	Confidence     *float64   `json:"confidence,omitempty"`
	Care           *Care      `json:"care,omitempty"`
}

// View renders a DisplayPlant.
func View(dp DisplayPlant) PlantView {
	switch p := dp.(type) {
	case Persisted:
		id := p.Entity.ID
		care := p.Entity.Care
		return PlantView{
			ID:             &id,
			Persisted:      true,
			ScientificName: p.Entity.ScientificName,
			CommonName:     p.Entity.CommonName,
			Description:    p.Entity.Description,
			ImageURL:       p.Entity.ImageURL,
			DataSources:    nonNilStrings(p.Entity.DataSources),
			Care:           &care,
		}
	case Unpersisted:
		v := PlantView{
			Source:      string(p.Source),
			ExternalID:  p.ExternalID,
			CommonName:  p.Result.CommonName,
			Description: p.Result.Description,
			ImageURL:    p.Result.ImageURL,
			DataSources: []string{string(p.Source)},
			Confidence:  p.Result.Confidence,
		}
		if p.Result.ScientificName != nil {
			v.ScientificName = *p.Result.ScientificName
		}
		return v
	}
	return PlantView{DataSources: []string{}}
}

// Views renders a list.
func Views(list []DisplayPlant) []PlantView {
	out := make([]PlantView, len(list))
	for i, dp := range list {
		out[i] = View(dp)
	}
	return out
}

func displayName(dp DisplayPlant) string {
	return View(dp).ScientificName
}
