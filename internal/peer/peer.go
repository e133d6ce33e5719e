// Package peer talks to the companion desktop process over local HTTP.
// The peer frequently is not running at all; callers treat any error here
// as a normal miss and fall through to the next tier.
package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/workpulse/dashd/internal/domain"
	"github.com/workpulse/dashd/internal/normalize"
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Payload is the peer's activity response. Activities arrive in whatever
// shape the peer version emits and are normalized by the caller.
type Payload struct {
	Activities []normalize.Raw        `json:"activities"`
	Projects   []domain.ProjectRecord `json:"projects"`
	Stats      domain.DailyStats      `json:"stats"`
}

// Client wraps the peer's activity endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     zerolog.Logger
}

// NewClient creates a peer client. The HTTP client timeout is a backstop;
// the real per-call budget comes from the timeout guard around Fetch.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "peer").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc HTTPClient) {
	c.httpClient = hc
}

// BaseURL returns the configured peer address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch retrieves the peer's activity payload for a date (YYYY-MM-DD).
// An empty date asks for today from the peer's perspective.
func (c *Client) Fetch(ctx context.Context, date string) (*Payload, error) {
	endpoint := c.baseURL + "/api/activity"
	if date != "" {
		endpoint += "?date=" + url.QueryEscape(date)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("peer API error (status %d): %s", resp.StatusCode, respBody)
	}

	var payload Payload
	if err := decodeResponse(resp, &payload); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("date", date).
		Int("activities", len(payload.Activities)).
		Int("projects", len(payload.Projects)).
		Msg("peer payload fetched")

	return &payload, nil
}

// Ping probes the peer without transferring a payload. Used by the health
// checker; an unreachable peer is a degraded, not failed, state.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/activity", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("peer unreachable: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("peer unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

// decodeResponse reads and decodes a JSON response.
func decodeResponse(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
