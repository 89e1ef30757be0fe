package images

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"whisper-feed/internal/utils"
)

func TestUploadReturnsReference(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(map[string]string{"url": "https://images.example/abc123"})
	}))
	defer host.Close()

	client := NewClient(host.URL)
	ref, appErr := client.Upload(context.Background(), "image/png", []byte("fake-png"))
	assert.Nil(t, appErr)
	assert.Equal(t, "https://images.example/abc123", ref)
}

func TestUploadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "https://images.example/retry"})
	}))
	defer host.Close()

	client := NewClient(host.URL)
	ref, appErr := client.Upload(context.Background(), "image/png", []byte("fake-png"))
	assert.Nil(t, appErr)
	assert.Equal(t, "https://images.example/retry", ref)
	assert.Equal(t, int32(3), calls.Load())
}

func TestUploadDoesNotRetryRejections(t *testing.T) {
	var calls atomic.Int32
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnsupportedMediaType)
	}))
	defer host.Close()

	client := NewClient(host.URL)
	_, appErr := client.Upload(context.Background(), "text/plain", []byte("not an image"))
	assert.NotNil(t, appErr)
	assert.Equal(t, utils.ErrUpstream, appErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	client := NewClient("http://images.example")
	_, appErr := client.Upload(context.Background(), "image/png", nil)
	assert.NotNil(t, appErr)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestUploadDisabledWithoutHost(t *testing.T) {
	var client *Client
	assert.False(t, client.Enabled())

	client = NewClient("")
	assert.False(t, client.Enabled())

	_, appErr := client.Upload(context.Background(), "image/png", []byte("x"))
	assert.NotNil(t, appErr)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}
