// Package plantid provides the adapter for the Plant.id API: identification
// and health assessment from a photo.
package plantid

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/albapepper/rootly-data/internal/config"
	"github.com/albapepper/rootly-data/internal/provider"
)

// DefaultMaxImageBytes bounds the image read when the caller sets no limit.
const DefaultMaxImageBytes = 16 << 20

var (
	identifyDetails = []string{"common_names", "url", "wiki_description", "taxonomy"}
	diseaseDetails  = []string{"description", "treatment", "classification"}
)

// Handler talks to Plant.id.
type Handler struct {
	client   *provider.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewHandler creates a Plant.id handler. maxImageBytes <= 0 uses
// DefaultMaxImageBytes.
func NewHandler(cfg config.ProviderConfig, maxImageBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &Handler{
		client: provider.NewClient(provider.ClientConfig{
			Provider:          provider.PlantID,
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			AuthStyle:         provider.AuthHeader,
			AuthParam:         "Api-Key",
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger),
		maxBytes: maxImageBytes,
		logger:   logger,
	}
}

// Name returns the provider name.
func (h *Handler) Name() provider.Name { return provider.PlantID }

// Identify sends the image to /identify and returns the top suggestion.
func (h *Handler) Identify(ctx context.Context, image io.Reader) (*Identification, error) {
	encoded, err := h.encodeImage(image)
	if err != nil {
		return nil, err
	}
	raw, err := h.client.PostJSON(ctx, "/identify", map[string]interface{}{
		"images":         []string{encoded},
		"modifiers":      []string{"crops_fast", "similar_images"},
		"plant_language": "en",
		"plant_details":  identifyDetails,
	})
	if err != nil {
		return nil, err
	}
	id, ok := NormalizeIdentification(raw)
	if !ok {
		return nil, provider.Malformed(provider.PlantID, "identify: no usable suggestion", nil)
	}
	h.logger.Info("Plant identified", "scientific_name", id.ScientificName, "confidence", id.Confidence)
	return id, nil
}

// AssessHealth sends the image to /health_assessment and normalizes the
// diagnosis.
func (h *Handler) AssessHealth(ctx context.Context, image io.Reader) (*HealthAssessment, error) {
	encoded, err := h.encodeImage(image)
	if err != nil {
		return nil, err
	}
	raw, err := h.client.PostJSON(ctx, "/health_assessment", map[string]interface{}{
		"images":          []string{encoded},
		"modifiers":       []string{"crops_fast"},
		"disease_details": diseaseDetails,
	})
	if err != nil {
		return nil, err
	}
	return NormalizeHealth(raw), nil
}

// encodeImage reads the whole image, checks it really is one and returns it
// base64-encoded. Nothing is sent upstream for rejected input.
func (h *Handler) encodeImage(r io.Reader) (string, error) {
	if r == nil {
		return "", provider.InvalidImage(provider.PlantID, "no image supplied")
	}
	data, err := io.ReadAll(io.LimitReader(r, h.maxBytes+1))
	if err != nil {
		return "", provider.InvalidImage(provider.PlantID, fmt.Sprintf("read image: %v", err))
	}
	if len(data) == 0 {
		return "", provider.InvalidImage(provider.PlantID, "empty image")
	}
	if int64(len(data)) > h.maxBytes {
		return "", provider.InvalidImage(provider.PlantID, fmt.Sprintf("image exceeds %d bytes", h.maxBytes))
	}
	if mt := DetectMIME(data); !strings.HasPrefix(mt, "image/") {
		return "", provider.InvalidImage(provider.PlantID, "unsupported content type "+mt)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DetectMIME determines a MIME type using stdlib detection first and falling
// back to the broader mimetype library when ambiguous (HEIC, AVIF and the
// like are common from phones).
func DetectMIME(data []byte) string {
	head := data
	if len(head) > 3072 {
		head = head[:3072]
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(head).String()
}
