package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/albapepper/rootly-data/internal/api/respond"
	"github.com/albapepper/rootly-data/internal/catalog"
	"github.com/albapepper/rootly-data/internal/provider"
	"github.com/albapepper/rootly-data/internal/provider/plantid"
)

// multipartOverhead covers form boundaries and headers around the image part.
const multipartOverhead = 1 << 20

// IdentifyResponse pairs the identification with the plant it resolved to.
// Plant is unpersisted when the catalog could not store the match.
type IdentifyResponse struct {
	Identification *plantid.Identification `json:"identification"`
	Plant          catalog.PlantView       `json:"plant"`
}

// openImage reads the "image" part of a multipart upload.
func (h *Handler) openImage(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	limit := h.cfg.MaxImageBytes
	if limit <= 0 {
		limit = plantid.DefaultMaxImageBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.WriteError(w, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "Image exceeds the upload limit")
			return nil, false
		}
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_UPLOAD", "Request must be multipart/form-data", err.Error())
		return nil, false
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_IMAGE", "Form field 'image' is required")
		return nil, false
	}
	return file, true
}

// Identify identifies the plant in an uploaded photo.
// @Summary Identify plant from photo
// @Description Identifies the plant and finds or creates it in the catalog.
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Plant photo"
// @Success 200 {object} IdentifyResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 413 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /identify [post]
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	ident, e, err := h.catalog.Identify(r.Context(), file)
	if ident == nil {
		h.writeError(w, err)
		return
	}

	resp := IdentifyResponse{Identification: ident}
	if err != nil {
		h.logger.Warn("Identified plant could not be stored", "plant", ident.ScientificName, "error", err)
		resp.Plant = catalog.View(catalog.Unpersisted{Source: provider.PlantID, Result: ident.Result()})
	} else {
		h.cache.InvalidatePrefix("search:")
		resp.Plant = catalog.View(catalog.Persisted{Entity: *e})
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

// AssessHealth diagnoses plant health from an uploaded photo.
// @Summary Assess plant health from photo
// @Description Returns the primary disease, symptoms and a treatment recommendation, or a healthy result.
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Plant photo"
// @Success 200 {object} plantid.HealthAssessment
// @Failure 400 {object} respond.ErrorResponse
// @Failure 413 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /health-assessment [post]
func (h *Handler) AssessHealth(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	assessment, err := h.catalog.AssessHealth(r.Context(), file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, assessment)
}
