// Package images talks to the external image host. Posts may carry an
// opaque image reference; the feed never stores image bytes itself.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"whisper-feed/internal/utils"
)

const (
	uploadTimeout = 15 * time.Second
	maxAttempts   = 3
	retryBackoff  = 500 * time.Millisecond
	maxUploadSize = 10 << 20 // 10 MiB
)

// Client uploads image payloads to the configured image host and returns
// the opaque reference the host assigns.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: uploadTimeout},
	}
}

// Enabled reports whether an image host is configured. Posts with image
// references are rejected when it is not.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload sends the image bytes to the host and returns the reference URL.
// Transient upstream failures are retried a bounded number of times.
func (c *Client) Upload(ctx context.Context, contentType string, data []byte) (string, *utils.AppError) {
	if !c.Enabled() {
		return "", utils.NewAppError(utils.ErrInvalidInput, "image uploads are not enabled", nil)
	}
	if len(data) == 0 {
		return "", utils.NewAppError(utils.ErrInvalidInput, "empty image payload", nil)
	}
	if len(data) > maxUploadSize {
		return "", utils.NewAppError(utils.ErrInvalidInput, "image payload too large", nil)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ref, retriable, err := c.uploadOnce(ctx, contentType, data)
		if err == nil {
			return ref, nil
		}
		lastErr = err
		if !retriable {
			break
		}
		log.Printf("Image upload attempt %d/%d failed: %v", attempt, maxAttempts, err)
		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
			return "", utils.NewAppError(utils.ErrUpstream, "image upload cancelled", ctx.Err())
		}
	}

	return "", utils.NewAppError(utils.ErrUpstream, "image host unavailable", lastErr)
}

func (c *Client) uploadOnce(ctx context.Context, contentType string, data []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(data))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return "", true, fmt.Errorf("image host returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		io.Copy(io.Discard, resp.Body)
		return "", false, fmt.Errorf("image host rejected upload with %d", resp.StatusCode)
	}

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, fmt.Errorf("malformed image host response: %w", err)
	}
	if body.URL == "" {
		return "", false, fmt.Errorf("image host response carried no URL")
	}
	return body.URL, false, nil
}
