// Package trefle provides the adapter for the Trefle API, the quantitative
// plant-trait source (light, pH, temperature, growth rate).
//
// Trefle uses token-based auth (query parameter) and wraps every payload in
// a top-level "data" object.
package trefle

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/provider"
)

// Handler fetches and normalizes plant data from Trefle.
type Handler struct {
	client *provider.Client
	logger *slog.Logger
}

// NewHandler creates a Trefle handler from provider configuration.
func NewHandler(cfg config.ProviderConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client: provider.NewClient(provider.ClientConfig{
			Provider:          provider.Trefle,
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			AuthStyle:         provider.AuthQuery,
			AuthParam:         "token",
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger),
		logger: logger,
	}
}

// Name implements catalog.Source.
func (h *Handler) Name() provider.Name { return provider.Trefle }

// Fetch loads one plant by Trefle id and normalizes plant and growth data.
func (h *Handler) Fetch(ctx context.Context, id string) (*provider.Result, error) {
	raw, err := h.client.GetJSON(ctx, "/plants/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	data, ok := raw["data"].(map[string]interface{})
	if !ok || len(data) == 0 {
		return nil, provider.Malformed(provider.Trefle, fmt.Sprintf("plant %s: no data", id), nil)
	}
	return NormalizeDetail(data), nil
}

// Search queries Trefle by free text and returns up to limit hits.
func (h *Handler) Search(ctx context.Context, query string, limit int) ([]provider.SearchHit, error) {
	raw, err := h.client.GetJSON(ctx, "/plants/search", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	items, ok := raw["data"].([]interface{})
	if !ok {
		return nil, provider.Malformed(provider.Trefle, "search: data is not a list", nil)
	}

	hits := make([]provider.SearchHit, 0, max(0, min(limit, len(items))))
	for _, item := range items {
		if limit > 0 && len(hits) >= limit {
			break
		}
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		hit, ok := normalizeSearchItem(obj)
		if !ok {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func normalizeSearchItem(obj map[string]interface{}) (provider.SearchHit, bool) {
	id, ok := provider.ExtractValue(obj["id"])
	if !ok {
		return provider.SearchHit{}, false
	}
	res := provider.Result{
		Source:         provider.Trefle,
		ScientificName: provider.StringPtr(obj["scientific_name"]),
		CommonName:     provider.StringPtr(obj["common_name"]),
		ImageURL:       provider.StringPtr(obj["image_url"]),
	}
	if res.ScientificName == nil {
		return provider.SearchHit{}, false
	}
	return provider.SearchHit{
		Source:     provider.Trefle,
		ExternalID: strconv.FormatInt(int64(id), 10),
		Result:     res,
	}, true
}
