package rollout

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// commentURLPattern extracts the issue number and comment ID from a
	// GitHub comment permalink.
	commentURLPattern = regexp.MustCompile(`/issues/(\d+)#issuecomment-(\d+)`)

	// experimentsBlockPattern captures the experiments YAML block up to the
	// first blank line or end of comment.
	experimentsBlockPattern = regexp.MustCompile(`(?s)(experiments:.*?)(?:\n\s*\n|$)`)
)

// CommentRef identifies a single issue comment.
type CommentRef struct {
	IssueNumber string
	CommentID   string
}

// ParseCommentURL extracts the issue number and comment ID from a GitHub
// comment permalink such as
// https://github.com/pytorch/test-infra/issues/5132#issuecomment-2076772891.
func ParseCommentURL(url string) (CommentRef, error) {
	m := commentURLPattern.FindStringSubmatch(url)
	if m == nil {
		return CommentRef{}, fmt.Errorf("invalid GitHub comment URL %q", url)
	}
	return CommentRef{IssueNumber: m[1], CommentID: m[2]}, nil
}

// experimentsDoc mirrors the YAML block maintained in the issue comment:
//
//	experiments:
//	  lf:
//	    rollout_perc: 35
type experimentsDoc struct {
	Experiments map[string]struct {
		RolloutPerc float64 `yaml:"rollout_perc"`
	} `yaml:"experiments"`
}

// ParseRolloutPercentage extracts the rollout percentage for the named
// experiment group from a comment body.
//
// The body may wrap the YAML in markdown code fences and carry arbitrary
// prose around it; only the experiments block is decoded.
func ParseRolloutPercentage(commentBody, group string) (float64, error) {
	m := experimentsBlockPattern.FindStringSubmatch(commentBody)
	if m == nil {
		return 0, fmt.Errorf("no YAML experiments block found in comment")
	}

	block := strings.TrimSpace(strings.ReplaceAll(m[1], "```", ""))

	var doc experimentsDoc
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return 0, fmt.Errorf("failed to parse experiments YAML: %w", err)
	}

	exp, ok := doc.Experiments[group]
	if !ok {
		return 0, fmt.Errorf("experiment group %q not found in comment", group)
	}

	perc := exp.RolloutPerc
	if math.IsNaN(perc) || math.IsInf(perc, 0) || perc < 0 || perc > 100 {
		return 0, fmt.Errorf("rollout percentage %v for group %q is outside [0, 100]", perc, group)
	}
	return perc, nil
}
