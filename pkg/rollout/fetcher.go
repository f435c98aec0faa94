package rollout

import (
	"context"
	"fmt"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/fetch"
)

// Source returns the current baseline routing percentage. Implementations
// must return a value already validated to lie in [0, 100].
type Source interface {
	BaselinePercentage(ctx context.Context) (float64, error)
}

// Config configures the GitHub comment fetcher.
type Config struct {
	// CommentURL is the permalink of the issue comment carrying the
	// experiments block.
	CommentURL string

	// Repo is the "owner/name" repository the comment lives in.
	Repo string

	// Group is the experiment group whose rollout percentage is read.
	Group string

	// Token is an optional GitHub API token.
	Token string

	// APIBaseURL overrides the GitHub API root, for tests.
	APIBaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int
}

// Fetcher reads the baseline percentage from a GitHub issue comment.
type Fetcher struct {
	config Config
	ref    CommentRef
	http   *fetch.Client
}

// commentResponse is the subset of the GitHub comment API response we use.
type commentResponse struct {
	Body string `json:"body"`
}

// NewFetcher creates a baseline fetcher for the configured comment.
func NewFetcher(config Config) (*Fetcher, error) {
	if config.Repo == "" {
		return nil, fmt.Errorf("baseline repo is required")
	}
	if config.Group == "" {
		config.Group = "lf"
	}
	if config.APIBaseURL == "" {
		config.APIBaseURL = "https://api.github.com"
	}

	ref, err := ParseCommentURL(config.CommentURL)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		config: config,
		ref:    ref,
		http: fetch.NewClient(fetch.Config{
			Source:     "baseline",
			Timeout:    config.Timeout,
			MaxRetries: config.MaxRetries,
		}),
	}, nil
}

// BaselinePercentage fetches the comment body and extracts the rollout
// percentage for the configured experiment group.
func (f *Fetcher) BaselinePercentage(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/repos/%s/issues/comments/%s",
		f.config.APIBaseURL, f.config.Repo, f.ref.CommentID)

	headers := map[string]string{
		"Accept": "application/vnd.github.v3+json",
	}
	if f.config.Token != "" {
		headers["Authorization"] = "token " + f.config.Token
	}

	var comment commentResponse
	if err := f.http.DoJSON(ctx, "GET", url, nil, &comment, headers); err != nil {
		return 0, err
	}

	perc, err := ParseRolloutPercentage(comment.Body, f.config.Group)
	if err != nil {
		return 0, &fetch.Error{Source: "baseline", Cause: &fetch.ParseError{
			Source: "baseline",
			Cause:  err,
		}}
	}
	return perc, nil
}

// Close releases the underlying HTTP resources.
func (f *Fetcher) Close() {
	f.http.Close()
}
