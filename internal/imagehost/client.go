// Package imagehost uploads product images to the external hosting service.
// The host is a third party outside our availability budget, so every call
// goes through a circuit breaker.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

var ErrUploadFailed = errors.New("image upload failed")

type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*UploadResult]
	uploadURL  string
	apiKey     string
}

func NewClient(uploadURL, apiKey string) *Client {
	settings := gobreaker.Settings{
		Name:    "image-host",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		breaker:    gobreaker.NewCircuitBreaker[*UploadResult](settings),
		uploadURL:  uploadURL,
		apiKey:     apiKey,
	}
}

// Upload sends the file to the image host and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	return c.breaker.Execute(func() (*UploadResult, error) {
		return c.upload(ctx, filename, file)
	})
}

func (c *Client) upload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image host unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}
