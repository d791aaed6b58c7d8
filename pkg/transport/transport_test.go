package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Get_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/models/owner/name/versions", r.URL.Path)
		assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "abc", r.Header.Get("X-Trace"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{{"id": "v1"}}})
	}))
	defer server.Close()

	tr, err := New(Config{
		BaseURL: server.URL + "/v1",
		Token:   "test-token",
		Headers: map[string]string{"X-Trace": "abc"},
	})
	require.NoError(t, err)

	var out struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	require.NoError(t, tr.Get(context.Background(), "/models/owner/name/versions", &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "v1", out.Results[0].ID)
}

func TestHTTPTransport_RequiredHeadersWin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token real", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr, err := New(Config{
		BaseURL: server.URL,
		Token:   "real",
		Headers: map[string]string{"Authorization": "Token fake", "Accept": "text/plain"},
	})
	require.NoError(t, err)
	require.NoError(t, tr.Get(context.Background(), "/x", nil))
}

func TestHTTPTransport_Post_Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc123", body["version"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "pred-1", "status": "starting"})
	}))
	defer server.Close()

	tr, err := New(Config{BaseURL: server.URL, Token: "t"})
	require.NoError(t, err)

	var out map[string]string
	err = tr.Post(context.Background(), "/predictions", map[string]any{"version": "abc123", "input": map[string]any{}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "pred-1", out["id"])
}

func TestHTTPTransport_ProxyPrefix(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Empty(t, r.Header.Get("Authorization"), "no token configured, no auth header")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr, err := New(Config{BaseURL: "http://upstream.test/v1", ProxyURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/http://upstream.test/v1", tr.BaseURL())

	require.NoError(t, tr.Get(context.Background(), "/predictions/p1", nil))
	assert.Equal(t, "/http://upstream.test/v1/predictions/p1", gotPath)
}

func TestHTTPTransport_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"title":"Not found","detail":"The requested resource could not be found.","status":404}`))
	}))
	defer server.Close()

	tr, err := New(Config{BaseURL: server.URL, Token: "t"})
	require.NoError(t, err)

	err = tr.Get(context.Background(), "/models/a/b/versions", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "The requested resource could not be found.", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "status 404")
}

func TestHTTPTransport_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("billing required"))
	}))
	defer server.Close()

	tr, err := New(Config{BaseURL: server.URL, Token: "t"})
	require.NoError(t, err)

	err = tr.Post(context.Background(), "/predictions", map[string]any{}, nil)
	assert.True(t, IsPaymentRequired(err))
	assert.Contains(t, err.Error(), "billing required")
}

func TestHTTPTransport_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	tr, err := New(Config{BaseURL: server.URL, Token: "t"})
	require.NoError(t, err)

	var out map[string]any
	err = tr.Get(context.Background(), "/predictions/x", &out)
	require.Error(t, err)
	assert.True(t, IsDecode(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestMockTransport_Queue(t *testing.T) {
	m := NewMockTransport()
	m.OnGet("/p", map[string]string{"status": "starting"}, map[string]string{"status": "succeeded"})

	var out map[string]string
	ctx := context.Background()
	require.NoError(t, m.Get(ctx, "/p", &out))
	assert.Equal(t, "starting", out["status"])
	require.NoError(t, m.Get(ctx, "/p", &out))
	assert.Equal(t, "succeeded", out["status"])
	// last response repeats
	require.NoError(t, m.Get(ctx, "/p", &out))
	assert.Equal(t, "succeeded", out["status"])

	assert.Len(t, m.CallsTo(http.MethodGet, "/p"), 3)
	assert.True(t, IsNotFound(m.Get(ctx, "/unknown", &out)))

	boom := errors.New("boom")
	m.FailPost("/q", boom)
	assert.ErrorIs(t, m.Post(ctx, "/q", nil, nil), boom)
}
