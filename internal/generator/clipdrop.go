package generator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/config"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/metrics"
)

// minImageBytes is the smallest payload accepted as a real image; anything
// shorter is treated as a provider failure.
const minImageBytes = 100

// Client calls the external text-to-image endpoint
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a provider client with a bounded request timeout
func NewClient(cfg config.ProviderConfig, logger *logging.Logger) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Usable reports whether the configured key passes the pre-flight shape
// check: long enough to be a real key and free of whitespace. This is a
// heuristic to skip calls that would certainly fail, not a validation of the
// key itself.
func (c *Client) Usable() bool {
	return isUsableKey(c.apiKey)
}

func isUsableKey(key string) bool {
	return len(key) > 20 && !strings.Contains(key, " ") && !strings.Contains(key, "\n")
}

// GenerateImage posts the prompt to the provider and returns the raw image
// bytes. Any transport error, non-success status or undersized payload is an
// error; the caller falls back to the local placeholder.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if err := form.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.LogProviderCall(0, 0, time.Since(start), err)
		metrics.RecordProviderCall("error", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		c.logger.LogProviderCall(resp.StatusCode, 0, duration, err)
		metrics.RecordProviderCall("error", duration.Seconds(), 0)
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("provider returned status %d", resp.StatusCode)
		c.logger.LogProviderCall(resp.StatusCode, len(data), duration, err)
		metrics.RecordProviderCall("error", duration.Seconds(), 0)
		return nil, err
	}

	if len(data) < minImageBytes {
		err := fmt.Errorf("empty or invalid response from provider (%d bytes)", len(data))
		c.logger.LogProviderCall(resp.StatusCode, len(data), duration, err)
		metrics.RecordProviderCall("error", duration.Seconds(), 0)
		return nil, err
	}

	c.logger.LogProviderCall(resp.StatusCode, len(data), duration, nil)
	metrics.RecordProviderCall("ok", duration.Seconds(), len(data))

	return data, nil
}
