package imagehost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "apples.png", header.Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(UploadResult{
			URL:      "https://img.example/apples.png",
			PublicID: "abc123",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	result, err := c.Upload(context.Background(), "apples.png", strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/apples.png", result.URL)
	assert.Equal(t, "abc123", result.PublicID)
}

func TestUpload_HostError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.Upload(context.Background(), "apples.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUpload_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.Upload(ctx, "apples.png", strings.NewReader("x"))
		require.ErrorIs(t, err, ErrUploadFailed)
	}

	// The sixth call must be rejected without reaching the host.
	_, err := c.Upload(ctx, "apples.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
