package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/engine/recommend"
	"github.com/claude/raptorfit/internal/engine/recovery"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/models"
)

// HTTPClient implements DataSource by calling the RaptorFit REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The user is
// resolved by the server, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("httpclient: %s: %w", path, growth.ErrInsufficientData)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// getJSON fetches path and decodes the body into out.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) StrengthIndex(ctx context.Context, _ int) (*insights.StrengthReport, error) {
	var r insights.StrengthReport
	if err := c.getJSON(ctx, "/api/v1/strength-index", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) SIHistory(ctx context.Context, _ int, start, end time.Time) ([]models.StrengthIndexSnapshot, error) {
	var snaps []models.StrengthIndexSnapshot
	if err := c.getJSON(ctx, "/api/v1/strength-index/history", timeParams(start, end), &snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

func (c *HTTPClient) Growth(ctx context.Context, _ int, series, strategy string, days int) (*growth.Forecast, error) {
	params := url.Values{}
	if series != "" && series != insights.SeriesSI {
		params.Set("series", series)
	}
	if strategy != "" {
		params.Set("strategy", strategy)
	}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var f growth.Forecast
	if err := c.getJSON(ctx, "/api/v1/growth", params, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *HTTPClient) Recovery(ctx context.Context, _ int) (*recovery.Score, error) {
	var s recovery.Score
	if err := c.getJSON(ctx, "/api/v1/recovery/score", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Recommendation(ctx context.Context, _ int, exercise string) (*recommend.Recommendation, error) {
	var r recommend.Recommendation
	if err := c.getJSON(ctx, "/api/v1/recommendations/"+url.PathEscape(exercise), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) Plan(ctx context.Context, _ int, group models.MuscleGroup) (*insights.PlanReport, error) {
	params := url.Values{}
	if group != "" {
		params.Set("muscle_group", string(group))
	}
	var p insights.PlanReport
	if err := c.getJSON(ctx, "/api/v1/plan", params, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) RestDay(ctx context.Context, _ int) (*recommend.RestDecision, error) {
	var d recommend.RestDecision
	if err := c.getJSON(ctx, "/api/v1/rest-day", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) DailyReadiness(ctx context.Context, _ int) (*insights.Readiness, error) {
	var r insights.Readiness
	if err := c.getJSON(ctx, "/api/v1/readiness", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) Workouts(ctx context.Context, _ int, start, end time.Time) ([]models.WorkoutSession, error) {
	var sessions []models.WorkoutSession
	if err := c.getJSON(ctx, "/api/v1/workouts", timeParams(start, end), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
