// Package perenual provides the adapter for the Perenual species catalog,
// the primary source of descriptive plant data and care guidance.
//
// Perenual authenticates with a "key" query parameter. Free-tier responses
// replace premium fields with upgrade placeholders, which the normalizer drops.
package perenual

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/provider"
)

// Handler fetches and normalizes species data from Perenual.
type Handler struct {
	client *provider.Client
	logger *slog.Logger
}

// NewHandler creates a Perenual handler from provider configuration.
func NewHandler(cfg config.ProviderConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client: provider.NewClient(provider.ClientConfig{
			Provider:          provider.Perenual,
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			AuthStyle:         provider.AuthQuery,
			AuthParam:         "key",
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger),
		logger: logger,
	}
}

// Name implements catalog.Source.
func (h *Handler) Name() provider.Name { return provider.Perenual }

// Fetch loads species details by Perenual id.
func (h *Handler) Fetch(ctx context.Context, id string) (*provider.Result, error) {
	raw, err := h.client.GetJSON(ctx, "/species/details/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if _, ok := raw["id"]; !ok {
		return nil, provider.Malformed(provider.Perenual, fmt.Sprintf("species %s: no id in response", id), nil)
	}
	return NormalizeDetail(raw), nil
}

// Search queries the species list. An empty query pages through the whole
// catalog, which backs the browse flow.
func (h *Handler) Search(ctx context.Context, query string, limit int) ([]provider.SearchHit, error) {
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("q", q)
	}
	raw, err := h.client.GetJSON(ctx, "/species-list", params)
	if err != nil {
		return nil, err
	}
	items, ok := raw["data"].([]interface{})
	if !ok {
		return nil, provider.Malformed(provider.Perenual, "species-list: data is not a list", nil)
	}

	var hits []provider.SearchHit
	for _, item := range items {
		if limit > 0 && len(hits) >= limit {
			break
		}
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := provider.ExtractValue(obj["id"])
		if !ok {
			continue
		}
		res := NormalizeDetail(obj)
		if res.ScientificName == nil {
			continue
		}
		hits = append(hits, provider.SearchHit{
			Source:     provider.Perenual,
			ExternalID: strconv.FormatInt(int64(id), 10),
			Result:     *res,
		})
	}
	return hits, nil
}
