package catalog

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/rootly-data/internal/provider"
)

// Source is a provider that can fetch one plant by its external id.
type Source interface {
	Name() provider.Name
	Fetch(ctx context.Context, id string) (*provider.Result, error)
}

// Merged is the outcome of a merge.
//
// Fold holds exactly what providers supplied (nil where none did), so updates
// can tell an explicit false from a default. Plant and Care are the canonical
// records with defaults applied.
type Merged struct {
	Plant Plant
	Care  Care
	Fold  provider.Result
}

// Merger fetches from sources and folds their results in precedence order.
type Merger struct {
	sources    []Source
	concurrent bool
	logger     *slog.Logger
}

// NewMerger creates a merger. The order of sources is the precedence order:
// earlier sources win conflicts. When concurrent is true the fetches run in
// parallel; the fold is sequential either way.
func NewMerger(sources []Source, concurrent bool, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{sources: sources, concurrent: concurrent, logger: logger}
}

// Sources returns the configured sources in precedence order.
func (m *Merger) Sources() []provider.Name {
	names := make([]provider.Name, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name()
	}
	return names
}

type fetched struct {
	res *provider.Result
	err error
}

// Merge builds the canonical record for scientificName from the providers
// named in ids. Provider failures are logged and skipped; the only error is
// ErrInvalidName.
func (m *Merger) Merge(ctx context.Context, scientificName string, ids ProviderIDs) (Merged, error) {
	name := strings.TrimSpace(scientificName)
	if name == "" {
		return Merged{}, ErrInvalidName
	}

	results := m.fetchAll(ctx, ids)

	var (
		acc     provider.Result
		sources []string
		refs    = map[string]string{}
	)
	for i, src := range m.sources {
		r := results[i]
		if r == nil {
			continue
		}
		// Every id that was tried is kept so a later refresh retries a
		// provider that was down at creation time.
		refs[string(src.Name())] = strings.TrimSpace(ids[src.Name()])
		if r.err != nil {
			m.logger.Warn("Provider skipped", "provider", src.Name(), "plant", name, "error", r.err)
			continue
		}
		if r.res.IsEmpty() {
			m.logger.Warn("Provider returned no usable data", "provider", src.Name(), "plant", name)
			continue
		}
		fold(&acc, r.res)
		sources = append(sources, string(src.Name()))
	}

	out := Merged{Fold: acc}
	out.Plant = plantFromFold(name, acc)
	out.Plant.DataSources = unionSources(nil, sources)
	out.Plant.ProviderRefs = refs
	out.Care = careFromFold(acc.Care)
	fillCareDefaults(&out.Care)

	m.logger.Debug("Merged plant", "plant", name, "sources", out.Plant.DataSources)
	return out, nil
}

// fetchAll calls every source that has an id. The result slice is indexed
// like m.sources; sources without an id leave a nil slot.
func (m *Merger) fetchAll(ctx context.Context, ids ProviderIDs) []*fetched {
	results := make([]*fetched, len(m.sources))
	call := func(i int, id string) {
		res, err := m.sources[i].Fetch(ctx, id)
		if err == nil && res == nil {
			err = provider.Malformed(m.sources[i].Name(), "empty result", nil)
		}
		results[i] = &fetched{res: res, err: err}
	}

	if !m.concurrent {
		for i, src := range m.sources {
			if id := strings.TrimSpace(ids[src.Name()]); id != "" {
				call(i, id)
			}
		}
		return results
	}

	// A failing provider must not cancel the others, so every goroutine
	// returns nil and reports through its slot.
	var g errgroup.Group
	for i, src := range m.sources {
		id := strings.TrimSpace(ids[src.Name()])
		if id == "" {
			continue
		}
		g.Go(func() error {
			call(i, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fold fills every field of acc that is still unset from r.
func fold(acc, r *provider.Result) {
	fillString(&acc.ScientificName, r.ScientificName)
	fillString(&acc.CommonName, r.CommonName)
	fillString(&acc.Description, r.Description)
	fillString(&acc.ImageURL, r.ImageURL)

	fillBool(&acc.Indoor, r.Indoor)
	fillBool(&acc.Outdoor, r.Outdoor)
	fillBool(&acc.Tropical, r.Tropical)
	fillBool(&acc.PoisonousToHumans, r.PoisonousToHumans)
	fillBool(&acc.PoisonousToPets, r.PoisonousToPets)
	fillBool(&acc.Invasive, r.Invasive)
	fillBool(&acc.Rare, r.Rare)

	if acc.Confidence == nil && r.Confidence != nil {
		acc.Confidence = r.Confidence
	}

	c := &acc.Care
	fillString(&c.WateringFrequency, r.Care.WateringFrequency)
	fillString(&c.SoilPreferences, r.Care.SoilPreferences)
	fillString(&c.TemperatureRange, r.Care.TemperatureRange)
	fillString(&c.GrowthRate, r.Care.GrowthRate)
	if d := r.Care.DifficultyLevel; c.DifficultyLevel == nil && d != nil && provider.ValidDifficulty(*d) {
		c.DifficultyLevel = provider.Ptr(*d)
	}
	fillStrings(&c.SunlightRequirements, r.Care.SunlightRequirements)
	fillStrings(&c.PropagationMethods, r.Care.PropagationMethods)
}

func fillString(dst **string, v *string) {
	if *dst != nil || v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" || provider.IsSentinel(s) {
		return
	}
	*dst = &s
}

func fillBool(dst **bool, v *bool) {
	if *dst == nil && v != nil {
		b := *v
		*dst = &b
	}
}

func fillStrings(dst *[]string, v []string) {
	if len(*dst) > 0 || len(v) == 0 {
		return
	}
	out := make([]string, 0, len(v))
	for _, s := range v {
		if s = strings.TrimSpace(s); s != "" && !provider.IsSentinel(s) {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func plantFromFold(name string, f provider.Result) Plant {
	return Plant{
		ScientificName:    name,
		CommonName:        f.CommonName,
		Description:       f.Description,
		ImageURL:          f.ImageURL,
		Indoor:            deref(f.Indoor),
		Outdoor:           deref(f.Outdoor),
		Tropical:          deref(f.Tropical),
		PoisonousToHumans: deref(f.PoisonousToHumans),
		PoisonousToPets:   deref(f.PoisonousToPets),
		Invasive:          deref(f.Invasive),
		Rare:              deref(f.Rare),
	}
}

func careFromFold(c provider.CareResult) Care {
	return Care{
		WateringFrequency:    c.WateringFrequency,
		SunlightRequirements: c.SunlightRequirements,
		SoilPreferences:      c.SoilPreferences,
		TemperatureRange:     c.TemperatureRange,
		DifficultyLevel:      c.DifficultyLevel,
		GrowthRate:           c.GrowthRate,
		PropagationMethods:   c.PropagationMethods,
	}
}

func deref(b *bool) bool {
	return b != nil && *b
}
