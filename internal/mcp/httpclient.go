package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
)

// HTTPClient implements DataSource by calling the LyftUp REST API. Used
// for remote MCP mode where the binary runs locally (stdio) but data
// lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CurrentSessions fetches the full session list via an unbounded range.
func (c *HTTPClient) CurrentSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error) {
	return c.QuerySessions(ctx, time.Unix(0, 0), time.Now().AddDate(1, 0, 0), userID)
}

// QuerySessions fetches sessions in [start, end).
func (c *HTTPClient) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error) {
	params := url.Values{}
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))

	var sessions []models.WorkoutSession
	if err := c.getJSON(ctx, "/api/v1/sessions?"+params.Encode(), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetProfile fetches the denormalized profile counters.
func (c *HTTPClient) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	var profile models.Profile
	if err := c.getJSON(ctx, "/api/v1/profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
