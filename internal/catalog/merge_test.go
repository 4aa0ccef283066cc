package catalog

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/rootly-data/internal/provider"
)

type fakeSource struct {
	name  provider.Name
	res   *provider.Result
	err   error
	calls atomic.Int32
	gotID string
}

func (f *fakeSource) Name() provider.Name { return f.name }

func (f *fakeSource) Fetch(_ context.Context, id string) (*provider.Result, error) {
	f.calls.Add(1)
	f.gotID = id
	return f.res, f.err
}

func str(s string) *string { return &s }

func perenualSource(res *provider.Result, err error) *fakeSource {
	return &fakeSource{name: provider.Perenual, res: res, err: err}
}

func trefleSource(res *provider.Result, err error) *fakeSource {
	return &fakeSource{name: provider.Trefle, res: res, err: err}
}

func TestMerger_Merge(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return defaults when no provider id is supplied", func(t *testing.T) {
		p := perenualSource(&provider.Result{CommonName: str("X")}, nil)
		m := NewMerger([]Source{p}, false, nil)

		got, err := m.Merge(ctx, "Monstera deliciosa", ProviderIDs{})
		require.NoError(t, err)
		assert.Equal(t, "Monstera deliciosa", got.Plant.ScientificName)
		assert.Equal(t, "Weekly", *got.Care.WateringFrequency)
		assert.Equal(t, []string{"Bright indirect light"}, got.Care.SunlightRequirements)
		assert.Equal(t, "Well-draining potting mix", *got.Care.SoilPreferences)
		assert.Equal(t, "Moderate", *got.Care.DifficultyLevel)
		assert.Empty(t, got.Plant.DataSources)
		assert.NotNil(t, got.Plant.DataSources)
		assert.Zero(t, p.calls.Load())
	})

	t.Run("Should let the higher precedence provider win", func(t *testing.T) {
		p := perenualSource(&provider.Result{CommonName: str("X")}, nil)
		tr := trefleSource(&provider.Result{CommonName: str("Y")}, nil)
		for _, concurrent := range []bool{false, true} {
			m := NewMerger([]Source{p, tr}, concurrent, nil)
			got, err := m.Merge(ctx, "Ficus lyrata", ProviderIDs{provider.Trefle: "2", provider.Perenual: "1"})
			require.NoError(t, err)
			assert.Equal(t, "X", *got.Plant.CommonName)
			assert.Equal(t, []string{"perenual", "trefle"}, got.Plant.DataSources)
			assert.Equal(t, map[string]string{"perenual": "1", "trefle": "2"}, got.Plant.ProviderRefs)
		}
	})

	t.Run("Should fill gaps from lower precedence providers", func(t *testing.T) {
		p := perenualSource(&provider.Result{
			CommonName: str("Fiddle-leaf fig"),
			Care:       provider.CareResult{WateringFrequency: str("Average")},
		}, nil)
		tr := trefleSource(&provider.Result{
			Care: provider.CareResult{
				WateringFrequency: str("High - daily to every other day"),
				TemperatureRange:  str("Warm (20-30°C / 70-85°F)"),
			},
		}, nil)
		m := NewMerger([]Source{p, tr}, false, nil)
		got, err := m.Merge(ctx, "Ficus lyrata", ProviderIDs{provider.Perenual: "1", provider.Trefle: "2"})
		require.NoError(t, err)
		assert.Equal(t, "Average", *got.Care.WateringFrequency)
		assert.Equal(t, "Warm (20-30°C / 70-85°F)", *got.Care.TemperatureRange)
	})

	t.Run("Should not let an unset field override an explicit one", func(t *testing.T) {
		p := perenualSource(&provider.Result{CommonName: str("Oleander")}, nil)
		tr := trefleSource(&provider.Result{PoisonousToHumans: provider.Ptr(true)}, nil)
		m := NewMerger([]Source{p, tr}, false, nil)
		got, err := m.Merge(ctx, "Nerium oleander", ProviderIDs{provider.Perenual: "1", provider.Trefle: "2"})
		require.NoError(t, err)
		assert.True(t, got.Plant.PoisonousToHumans)
		assert.Nil(t, got.Fold.PoisonousToPets)
	})

	t.Run("Should isolate a failing provider", func(t *testing.T) {
		p := perenualSource(nil, provider.Unavailable(provider.Perenual, "timeout", nil))
		tr := trefleSource(&provider.Result{
			Description: str("A plant in the Moraceae family."),
			Care:        provider.CareResult{SunlightRequirements: []string{"Full sun"}},
		}, nil)
		m := NewMerger([]Source{p, tr}, true, nil)
		got, err := m.Merge(ctx, "Ficus lyrata", ProviderIDs{provider.Perenual: "1", provider.Trefle: "2"})
		require.NoError(t, err)
		assert.Equal(t, "A plant in the Moraceae family.", *got.Plant.Description)
		assert.Equal(t, []string{"Full sun"}, got.Care.SunlightRequirements)
		assert.Equal(t, []string{"trefle"}, got.Plant.DataSources)
		assert.Equal(t, map[string]string{"perenual": "1", "trefle": "2"}, got.Plant.ProviderRefs)
		assert.Equal(t, "Weekly", *got.Care.WateringFrequency)
	})

	t.Run("Should skip providers with empty results", func(t *testing.T) {
		p := perenualSource(&provider.Result{Source: provider.Perenual}, nil)
		m := NewMerger([]Source{p}, false, nil)
		got, err := m.Merge(ctx, "Ficus lyrata", ProviderIDs{provider.Perenual: "1"})
		require.NoError(t, err)
		assert.Empty(t, got.Plant.DataSources)
	})

	t.Run("Should drop sentinels and invalid difficulty values", func(t *testing.T) {
		p := perenualSource(&provider.Result{
			CommonName: str("Unknown"),
			Care: provider.CareResult{
				DifficultyLevel: str("Extreme"),
				GrowthRate:      str("Coming Soon"),
			},
		}, nil)
		tr := trefleSource(&provider.Result{CommonName: str("Rubber plant")}, nil)
		m := NewMerger([]Source{p, tr}, false, nil)
		got, err := m.Merge(ctx, "Ficus elastica", ProviderIDs{provider.Perenual: "1", provider.Trefle: "2"})
		require.NoError(t, err)
		assert.Equal(t, "Rubber plant", *got.Plant.CommonName)
		assert.Equal(t, DefaultDifficulty, *got.Care.DifficultyLevel)
		assert.Nil(t, got.Care.GrowthRate)
	})

	t.Run("Should keep the requested scientific name", func(t *testing.T) {
		p := perenualSource(&provider.Result{ScientificName: str("Ficus lyrata Warb.")}, nil)
		m := NewMerger([]Source{p}, false, nil)
		got, err := m.Merge(ctx, "  Ficus lyrata ", ProviderIDs{provider.Perenual: " 7 "})
		require.NoError(t, err)
		assert.Equal(t, "Ficus lyrata", got.Plant.ScientificName)
		assert.Equal(t, "7", p.gotID)
	})

	t.Run("Should reject an empty scientific name", func(t *testing.T) {
		m := NewMerger(nil, false, nil)
		_, err := m.Merge(ctx, "  ", nil)
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		p := perenualSource(&provider.Result{
			CommonName: str("Swiss cheese plant"),
			Indoor:     provider.Ptr(true),
			Care:       provider.CareResult{PropagationMethods: []string{"Cuttings", "Air layering"}},
		}, nil)
		tr := trefleSource(&provider.Result{
			Outdoor: provider.Ptr(false),
			Care:    provider.CareResult{SoilPreferences: str("Acidic soil (pH < 6.0)")},
		}, nil)
		m := NewMerger([]Source{p, tr}, true, nil)
		ids := ProviderIDs{provider.Perenual: "1", provider.Trefle: "2"}

		first, err := m.Merge(ctx, "Monstera deliciosa", ids)
		require.NoError(t, err)
		want, err := json.Marshal(first)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := m.Merge(ctx, "Monstera deliciosa", ids)
			require.NoError(t, err)
			got, err := json.Marshal(again)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		}
	})
}

func TestMerger_Sources(t *testing.T) {
	m := NewMerger([]Source{perenualSource(nil, nil), trefleSource(nil, nil)}, false, nil)
	assert.Equal(t, []provider.Name{provider.Perenual, provider.Trefle}, m.Sources())
}
