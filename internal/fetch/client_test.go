package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("page body"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(5 * time.Second)
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "page body", body)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "text/html")
}

func TestClient_GetRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(5 * time.Second)
	_, err := c.Get(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "unexpected status 410")
}

func TestClient_PostJSON(t *testing.T) {
	type echo struct {
		Name string `json:"name"`
	}

	var gotContentType string
	var gotBody echo
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]bool{"correct": true})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(5 * time.Second)
	var out struct {
		Correct bool `json:"correct"`
	}
	err := c.PostJSON(context.Background(), srv.URL, []byte(`{"name":"x"}`), &out)
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "x", gotBody.Name)
	assert.True(t, out.Correct)
}

func TestClient_PostJSONRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(5 * time.Second)
	err := c.PostJSON(context.Background(), srv.URL, []byte(`{}`), nil)
	assert.ErrorContains(t, err, "HTTP 403")
}

func TestClient_DownloadBytes(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0xff}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(5 * time.Second)
	got, err := c.DownloadBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
