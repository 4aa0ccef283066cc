package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server, style AuthStyle, key string) *Client {
	return NewClient(ClientConfig{
		Provider:          Trefle,
		BaseURL:           srv.URL,
		APIKey:            key,
		AuthStyle:         style,
		AuthParam:         "token",
		Timeout:           200 * time.Millisecond,
		RequestsPerMinute: 6000,
	}, nil)
}

func TestClient_GetJSON(t *testing.T) {
	t.Run("Should send query auth and decode the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/plants/1", r.URL.Path)
			assert.Equal(t, "secret", r.URL.Query().Get("token"))
			assert.Equal(t, "x", r.URL.Query().Get("q"))
			w.Write([]byte(`{"data":{"id":1}}`))
		}))
		defer srv.Close()
		c := newTestClient(srv, AuthQuery, "secret")
		out, err := c.GetJSON(context.Background(), "/plants/1", map[string][]string{"q": {"x"}})
		require.NoError(t, err)
		v, ok := ExtractValue(Lookup(out, "data", "id"))
		assert.True(t, ok)
		assert.Equal(t, 1.0, v)
	})

	t.Run("Should send header auth", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret", r.Header.Get("token"))
			assert.Empty(t, r.URL.Query().Get("token"))
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()
		c := newTestClient(srv, AuthHeader, "secret")
		_, err := c.GetJSON(context.Background(), "/x", nil)
		assert.NoError(t, err)
	})

	t.Run("Should map non-2xx to ErrUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()
		c := newTestClient(srv, AuthQuery, "secret")
		_, err := c.GetJSON(context.Background(), "/x", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnavailable))
		var f *Failure
		require.True(t, errors.As(err, &f))
		assert.Equal(t, Trefle, f.Provider)
		assert.Contains(t, f.Reason, "502")
	})

	t.Run("Should map timeouts to ErrUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer srv.Close()
		c := newTestClient(srv, AuthQuery, "secret")
		_, err := c.GetJSON(context.Background(), "/slow", nil)
		assert.True(t, errors.Is(err, ErrUnavailable))
	})

	t.Run("Should map undecodable bodies to ErrMalformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}))
		defer srv.Close()
		c := newTestClient(srv, AuthQuery, "secret")
		_, err := c.GetJSON(context.Background(), "/x", nil)
		assert.True(t, errors.Is(err, ErrMalformed))
	})

	t.Run("Should fail without a network call when unconfigured", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()
		c := newTestClient(srv, AuthQuery, "")
		_, err := c.GetJSON(context.Background(), "/x", nil)
		assert.True(t, errors.Is(err, ErrUnavailable))
		assert.False(t, called)
	})
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()
	c := newTestClient(srv, AuthHeader, "secret")
	out, err := c.PostJSON(context.Background(), "/identify", map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
}
