package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// Config configures a fetch client.
type Config struct {
	// Source names the external source for errors and logs.
	Source string

	// Timeout is the per-request timeout. Default: 10 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Default: 3. Negative disables retrying.
	MaxRetries int

	// MaxIdleConns bounds the connection pool. Default: 10.
	MaxIdleConns int
}

// Client is an HTTP client with bounded exponential-backoff retry.
//
// Retries cover network errors and 5xx responses. 401/403 produce an
// AuthError and 4xx an APIError, neither retried: the upstream answer will
// not change, and hammering an analytics API over a bad key helps nobody.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a fetch client for the named source.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}

	transport := &http.Transport{
		MaxIdleConns:      config.MaxIdleConns,
		IdleConnTimeout:   90 * time.Second,
		ForceAttemptHTTP2: true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// Source returns the configured source name.
func (c *Client) Source() string {
	return c.config.Source
}

// Do performs an HTTP request with retry and returns the response body of a
// 2xx response.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			slog.Debug("retrying request",
				"source", c.config.Source,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, &Error{Source: c.config.Source, Cause: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, &Error{Source: c.config.Source, Cause: fmt.Errorf("failed to create request: %w", err)}
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &Error{Source: c.config.Source, Cause: &TimeoutError{
					Source:  c.config.Source,
					Timeout: c.config.Timeout,
				}}
			}
			lastErr = err
			slog.Warn("request failed, will retry",
				"source", c.config.Source,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, &Error{Source: c.config.Source, Cause: &ParseError{
					Source: c.config.Source,
					Cause:  fmt.Errorf("failed to read response: %w", readErr),
				}}
			}
			return respBody, nil
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, &Error{Source: c.config.Source, Cause: &AuthError{
				Source:  c.config.Source,
				Message: string(respBody),
			}}

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, &Error{Source: c.config.Source, Cause: &APIError{
				Source:     c.config.Source,
				StatusCode: resp.StatusCode,
				Message:    string(respBody),
			}}

		default:
			lastErr = &APIError{
				Source:     c.config.Source,
				StatusCode: resp.StatusCode,
				Message:    string(respBody),
			}
			slog.Warn("request returned error status, will retry",
				"source", c.config.Source,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	return nil, &Error{Source: c.config.Source, Cause: lastErr}
}

// DoJSON performs a request with a JSON body and decodes a JSON response
// into respBody.
func (c *Client) DoJSON(ctx context.Context, method, url string, reqBody, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return &Error{Source: c.config.Source, Cause: fmt.Errorf("failed to marshal request: %w", err)}
		}
	}

	raw, err := c.Do(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}

	if respBody != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return &Error{Source: c.config.Source, Cause: &ParseError{
				Source:      c.config.Source,
				RawResponse: string(raw),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}}
		}
	}

	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
