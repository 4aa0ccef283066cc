package plantid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/provider"
)

var pngImage = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func decode(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestNormalizeHealth(t *testing.T) {
	t.Run("Should report healthy for a confident healthy flag with no diseases", func(t *testing.T) {
		got := NormalizeHealth(decode(t, `{"health_assessment":{"is_healthy":true,"is_healthy_probability":0.9,"diseases":[]}}`))
		assert.Equal(t, Healthy(), got)
		assert.Equal(t, []string{}, got.Diseases)
		assert.Equal(t, "Healthy plant", got.Diagnosis)
	})

	t.Run("Should report healthy when the assessment is missing", func(t *testing.T) {
		assert.True(t, NormalizeHealth(decode(t, `{"is_plant":true}`)).IsHealthy)
		assert.True(t, NormalizeHealth(decode(t, `{"health_assessment":{"is_healthy":false}}`)).IsHealthy)
	})

	t.Run("Should ignore diseases when healthy probability exceeds the threshold", func(t *testing.T) {
		got := NormalizeHealth(decode(t, `{"health_assessment":{"is_healthy":true,"is_healthy_probability":0.8,
			"diseases":[{"name":"fungi","probability":0.9}]}}`))
		assert.True(t, got.IsHealthy)
	})

	t.Run("Should report healthy when no disease clears 0.3", func(t *testing.T) {
		got := NormalizeHealth(decode(t, `{"health_assessment":{"is_healthy":false,"is_healthy_probability":0.4,
			"diseases":[{"name":"fungi","probability":0.3},{"name":"pests","probability":0.1}]}}`))
		assert.True(t, got.IsHealthy)
	})

	t.Run("Should pick the most probable disease", func(t *testing.T) {
		got := NormalizeHealth(decode(t, `{"health_assessment":{"is_healthy":true,"is_healthy_probability":0.5,
			"diseases":[
				{"name":"water deficiency","probability":0.45},
				{"name":"Fungi","probability":0.62,"disease_details":{
					"classification":{"symptoms":["spots","yellowing"]},
					"treatment":{"biological":["Remove affected leaves."]}}},
				{"name":"nutrient deficiency","probability":0.12}
			]}}`))
		assert.False(t, got.IsHealthy)
		assert.Equal(t, "Fungi", got.Diagnosis)
		assert.Equal(t, []string{"water deficiency", "Fungi"}, got.Diseases)
		assert.Equal(t, []string{"spots", "yellowing"}, got.Symptoms)
		require.NotNil(t, got.Confidence)
		assert.Equal(t, 0.62, *got.Confidence)
		assert.Equal(t, "Remove affected leaves.", got.Treatment)
	})

	t.Run("Should fall back to the default treatment", func(t *testing.T) {
		got := NormalizeHealth(decode(t, `{"health_assessment":{"diseases":[{"name":"Pests","probability":0.7}]}}`))
		assert.Equal(t, "Consult a plant specialist", got.Treatment)
	})
}

func TestNormalizeIdentification(t *testing.T) {
	t.Run("Should take the most probable suggestion", func(t *testing.T) {
		id, ok := NormalizeIdentification(decode(t, `{"suggestions":[
			{"plant_name":"Ficus elastica","probability":0.2},
			{"plant_name":"Monstera deliciosa","probability":0.93,"plant_details":{
				"common_names":["Swiss cheese plant","Split-leaf philodendron"],
				"taxonomy":{"family":"Araceae","genus":"Monstera"},
				"wiki_description":{"value":"Species of flowering plant."}}}
		]}`))
		require.True(t, ok)
		assert.Equal(t, "Monstera deliciosa", id.ScientificName)
		assert.Equal(t, 0.93, id.Confidence)
		assert.Equal(t, "Araceae", id.Family)
		assert.Equal(t, "Monstera", id.Genus)
		assert.Equal(t, []string{"Swiss cheese plant", "Split-leaf philodendron"}, id.CommonNames)

		res := id.Result()
		assert.Equal(t, provider.PlantID, res.Source)
		assert.Equal(t, "Swiss cheese plant", *res.CommonName)
		assert.Equal(t, 0.93, *res.Confidence)
	})

	t.Run("Should fail without suggestions", func(t *testing.T) {
		_, ok := NormalizeIdentification(decode(t, `{"suggestions":[]}`))
		assert.False(t, ok)
		_, ok = NormalizeIdentification(decode(t, `{"suggestions":[{"plant_name":"","probability":0.9}]}`))
		assert.False(t, ok)
	})
}

func newTestHandler(t *testing.T, maxBytes int64, h http.HandlerFunc) *Handler {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHandler(config.ProviderConfig{
		BaseURL:           srv.URL,
		APIKey:            "pid",
		Timeout:           time.Second,
		RequestsPerMinute: 6000,
	}, maxBytes, nil)
}

func TestHandler_Identify(t *testing.T) {
	t.Run("Should post the encoded image with the Api-Key header", func(t *testing.T) {
		h := newTestHandler(t, 0, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/identify", r.URL.Path)
			assert.Equal(t, "pid", r.Header.Get("Api-Key"))
			var body struct {
				Images []string `json:"images"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Images, 1)
			assert.Equal(t, base64.StdEncoding.EncodeToString(pngImage), body.Images[0])
			w.Write([]byte(`{"suggestions":[{"plant_name":"Ficus lyrata","probability":0.8}]}`))
		})
		id, err := h.Identify(context.Background(), bytes.NewReader(pngImage))
		require.NoError(t, err)
		assert.Equal(t, "Ficus lyrata", id.ScientificName)
	})

	t.Run("Should reject non-images before calling upstream", func(t *testing.T) {
		called := false
		h := newTestHandler(t, 0, func(w http.ResponseWriter, r *http.Request) { called = true })
		_, err := h.Identify(context.Background(), strings.NewReader("just some text"))
		assert.True(t, errors.Is(err, provider.ErrInvalidImage))
		_, err = h.Identify(context.Background(), strings.NewReader(""))
		assert.True(t, errors.Is(err, provider.ErrInvalidImage))
		assert.False(t, called)
	})

	t.Run("Should reject oversized images", func(t *testing.T) {
		h := newTestHandler(t, 16, func(w http.ResponseWriter, r *http.Request) {})
		_, err := h.Identify(context.Background(), bytes.NewReader(pngImage))
		assert.True(t, errors.Is(err, provider.ErrInvalidImage))
	})

	t.Run("Should surface upstream failures", func(t *testing.T) {
		h := newTestHandler(t, 0, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := h.Identify(context.Background(), bytes.NewReader(pngImage))
		assert.True(t, errors.Is(err, provider.ErrUnavailable))
	})
}

func TestHandler_AssessHealth(t *testing.T) {
	h := newTestHandler(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health_assessment", r.URL.Path)
		w.Write([]byte(`{"health_assessment":{"is_healthy":true,"is_healthy_probability":0.9,"diseases":[]}}`))
	})
	got, err := h.AssessHealth(context.Background(), bytes.NewReader(pngImage))
	require.NoError(t, err)
	assert.True(t, got.IsHealthy)
}
