package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/albapepper/rootly-data/internal/api/respond"
	"github.com/albapepper/rootly-data/internal/cache"
	"github.com/albapepper/rootly-data/internal/catalog"
	"github.com/albapepper/rootly-data/internal/provider"
)

const (
	defaultSearchLimit = 20
	maxBodyBytes       = 64 << 10
)

// ImportRequest asks for a plant to be found or created from provider data.
type ImportRequest struct {
	ScientificName string            `json:"scientific_name" validate:"required,max=255"`
	ProviderIDs    map[string]string `json:"provider_ids" validate:"omitempty,dive,keys,oneof=perenual trefle,endkeys,required,max=64"`
}

// RefreshRequest optionally overrides the provider ids stored on the plant.
type RefreshRequest struct {
	ProviderIDs map[string]string `json:"provider_ids" validate:"omitempty,dive,keys,oneof=perenual trefle,endkeys,required,max=64"`
}

// SearchResponse lists persisted plants first, then provider hits.
type SearchResponse struct {
	Query   string              `json:"query"`
	Count   int                 `json:"count"`
	Results []catalog.PlantView `json:"results"`
}

type searchParams struct {
	Query string `validate:"required,max=200"`
	Limit int    `validate:"min=1,max=100"`
}

func toProviderIDs(m map[string]string) catalog.ProviderIDs {
	ids := make(catalog.ProviderIDs, len(m))
	for k, v := range m {
		ids[provider.Name(k)] = strings.TrimSpace(v)
	}
	return ids
}

func plantIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "plantID"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "plantID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// GetPlant returns a persisted plant with its care record.
// @Summary Get plant
// @Description Returns the canonical plant and care record. Responses are cached and carry an ETag.
// @Tags plants
// @Produce json
// @Param plantID path string true "Plant UUID"
// @Success 200 {object} catalog.Entity
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /plants/{plantID} [get]
func (h *Handler) GetPlant(w http.ResponseWriter, r *http.Request) {
	id, ok := plantIDParam(w, r)
	if !ok {
		return
	}

	cacheKey := cache.PlantKey(id.String())
	ttl := cache.TTLPlant

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	e, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		h.writeError(w, err)
		return
	}

	etag := h.cache.Set(cacheKey, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// ImportPlant finds or creates a plant by scientific name.
// @Summary Import plant
// @Description Returns the existing plant with this scientific name, or merges provider data into a new one.
// @Tags plants
// @Accept json
// @Produce json
// @Param request body ImportRequest true "Scientific name and optional provider ids"
// @Success 200 {object} catalog.Entity
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /plants/import [post]
func (h *Handler) ImportPlant(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON", err.Error())
		return
	}
	req.ScientificName = strings.TrimSpace(req.ScientificName)
	if err := h.validate.Struct(req); err != nil {
		validationError(w, err)
		return
	}

	e, err := h.catalog.FindOrCreate(r.Context(), req.ScientificName, toProviderIDs(req.ProviderIDs))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cache.InvalidatePrefix("search:")
	respond.WriteJSONObject(w, http.StatusOK, e)
}

// RefreshPlant re-merges provider data into an existing plant.
// @Summary Refresh plant
// @Description Overwrites the fields providers supply. Without provider_ids the ids stored on the plant are used.
// @Tags plants
// @Accept json
// @Produce json
// @Param plantID path string true "Plant UUID"
// @Param request body RefreshRequest false "Provider ids"
// @Success 200 {object} catalog.Entity
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /plants/{plantID}/refresh [post]
func (h *Handler) RefreshPlant(w http.ResponseWriter, r *http.Request) {
	id, ok := plantIDParam(w, r)
	if !ok {
		return
	}

	var req RefreshRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validationError(w, err)
		return
	}

	var (
		e   *catalog.Entity
		err error
	)
	if len(req.ProviderIDs) == 0 {
		e, err = h.catalog.Refresh(r.Context(), id)
	} else {
		e, err = h.catalog.UpdateFromAPIs(r.Context(), id, toProviderIDs(req.ProviderIDs))
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.cache.Invalidate(cache.PlantKey(id.String()))
	h.cache.InvalidatePrefix("search:")
	respond.WriteJSONObject(w, http.StatusOK, e)
}

// SearchPlants searches persisted plants and provider catalogs.
// @Summary Search plants
// @Description Persisted matches come first, followed by provider hits not yet imported. A failing provider only shortens the list.
// @Tags plants
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Maximum results (1-100)" default(20)
// @Success 200 {object} SearchResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /plants/search [get]
func (h *Handler) SearchPlants(w http.ResponseWriter, r *http.Request) {
	params := searchParams{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: defaultSearchLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
			return
		}
		params.Limit = n
	}
	if err := h.validate.Struct(params); err != nil {
		validationError(w, err)
		return
	}

	cacheKey := cache.SearchKey(params.Query, params.Limit)
	ttl := cache.TTLSearch

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	list, err := h.catalog.Search(r.Context(), params.Query, params.Limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	views := catalog.Views(list)
	data, err := json.Marshal(SearchResponse{Query: params.Query, Count: len(views), Results: views})
	if err != nil {
		h.writeError(w, err)
		return
	}

	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}
