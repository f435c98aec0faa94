package spend

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/fetch"
)

// timestampLayout is the provider's expected timestamp format. The API
// takes local wall-clock timestamps with a literal Z-suffixed millisecond
// field.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Config configures the spend analytics client.
type Config struct {
	// BaseURL is the analytics API root, without trailing slash.
	BaseURL string

	// TenantID identifies the analytics tenant.
	TenantID string

	// ProjectID is the cloud project whose spend is tracked.
	ProjectID string

	// APIKey authenticates requests. Required.
	APIKey string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int
}

// Client fetches spend figures from the analytics provider.
type Client struct {
	config Config
	http   *fetch.Client
	now    func() time.Time
}

// queryRequest is the provider's billing query payload.
type queryRequest struct {
	EndTime       string      `json:"end_time"`
	StartTime     string      `json:"start_time"`
	DataSource    string      `json:"data_source"`
	Dimensions    []string    `json:"dimensions"`
	Measures      []string    `json:"measures"`
	PreAggFilters []aggFilter `json:"pre_agg_filters"`
}

type aggFilter struct {
	Operator        string   `json:"operator"`
	SchemaFieldName string   `json:"schema_field_name"`
	Values          []string `json:"values"`
}

// queryResponse is the provider's billing query response. Credits are
// reported as negative numbers for spend; callers take the absolute value.
type queryResponse struct {
	Response []struct {
		Credits *float64 `json:"credits"`
	} `json:"response"`
}

// NewClient creates a spend analytics client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("spend API key is required")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("spend API base URL is required")
	}
	if config.TenantID == "" {
		return nil, fmt.Errorf("spend API tenant id is required")
	}

	return &Client{
		config: config,
		http: fetch.NewClient(fetch.Config{
			Source:     "spend",
			Timeout:    config.Timeout,
			MaxRetries: config.MaxRetries,
		}),
		now: time.Now,
	}, nil
}

// MonthToDateSpend returns the credits spent from the start of the current
// local calendar month until now.
func (c *Client) MonthToDateSpend(ctx context.Context) (float64, error) {
	now := c.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return c.query(ctx, start, now)
}

// DailySpendRate returns the average credits per day over the lookbackDays
// completed local calendar days preceding today.
func (c *Client) DailySpendRate(ctx context.Context, lookbackDays int) (float64, error) {
	if lookbackDays < 1 {
		return 0, fmt.Errorf("lookback days must be >= 1, got %d", lookbackDays)
	}

	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -lookbackDays)
	end := today.Add(-time.Second)

	total, err := c.query(ctx, start, end)
	if err != nil {
		return 0, err
	}
	return total / float64(lookbackDays), nil
}

// query runs one billing query over [start, end] and returns the absolute
// credit total. An empty response means no spend in the window.
func (c *Client) query(ctx context.Context, start, end time.Time) (float64, error) {
	endpoint := fmt.Sprintf("%s/analytics/query/load?tenant_id=%s",
		c.config.BaseURL, url.QueryEscape(c.config.TenantID))

	req := queryRequest{
		StartTime:  start.Format(timestampLayout),
		EndTime:    end.Format(timestampLayout),
		DataSource: "Billing",
		Dimensions: []string{"projectId", "projectName"},
		Measures:   []string{"credits"},
		PreAggFilters: []aggFilter{{
			Operator:        "equals",
			SchemaFieldName: "projectId",
			Values:          []string{c.config.ProjectID},
		}},
	}

	headers := map[string]string{
		"Authorization": c.config.APIKey,
		"accept":        "application/json",
		"content-type":  "application/json",
	}

	var resp queryResponse
	if err := c.http.DoJSON(ctx, "POST", endpoint, req, &resp, headers); err != nil {
		return 0, err
	}

	if len(resp.Response) == 0 {
		return 0, nil
	}
	if resp.Response[0].Credits == nil {
		return 0, &fetch.Error{Source: "spend", Cause: &fetch.ParseError{
			Source: "spend",
			Cause:  fmt.Errorf("response does not contain credits data"),
		}}
	}

	credits := math.Abs(*resp.Response[0].Credits)
	if math.IsNaN(credits) || math.IsInf(credits, 0) {
		return 0, &fetch.Error{Source: "spend", Cause: &fetch.ParseError{
			Source: "spend",
			Cause:  fmt.Errorf("credits value is not finite"),
		}}
	}
	return credits, nil
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() {
	c.http.Close()
}
