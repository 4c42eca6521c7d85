// Package upload sends Alpha Progression exports to a remote RaptorFit server.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/raptorfit/internal/ingest"
)

// Client posts exports to the server's ingest endpoint. It satisfies the
// importer's Ingester, so the same directory walk serves local and remote
// imports. The server resolves the user, so userID is ignored.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the RaptorFit server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// Ingest POSTs one CSV export. Retries up to 3 times with exponential backoff
// on transport errors and 5xx responses; a 4xx is returned immediately.
func (c *Client) Ingest(ctx context.Context, r io.Reader, _ int) (*ingest.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		res, retry, err := c.send(ctx, data)
		if err == nil {
			return res, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) send(ctx context.Context, data []byte) (*ingest.Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/ingest/alpha", bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
		return nil, resp.StatusCode >= http.StatusInternalServerError, err
	}

	var res ingest.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, false, fmt.Errorf("decoding ingest result: %w", err)
	}
	return &res, false, nil
}
