package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, []byte(`{"ok":true}`), `W/"abc"`, time.Hour, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `W/"abc"`, rec.Header().Get("ETag"))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "public, max-age=3600, stale-while-revalidate=1800", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestWriteErrorDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorDetail(rec, http.StatusBadGateway, "PROVIDER_UNAVAILABLE", "Upstream failed", "plantid: timeout")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PROVIDER_UNAVAILABLE", body.Error.Code)
	assert.Equal(t, "plantid: timeout", body.Error.Detail)
}
