package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxQuotaRetries bounds how many times a request is retried after a
	// quota-exhaustion response before the error propagates.
	MaxQuotaRetries = 5

	// QuotaRetryDelay is the fixed delay before retrying a request that
	// was rejected for quota exhaustion.
	QuotaRetryDelay = 60 * time.Second
)

// Client wraps the go-github client with rate-limit handling and a
// bounded retry policy for quota-exhaustion responses.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter

	// Injected for tests.
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a GitHub client with a static access token.
// Works for both PAT and OAuth access tokens.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		gh:          gh.NewClient(tc),
		rateLimiter: NewRateLimiter(),
		sleep:       sleepCtx,
	}
}

// ListIssuesPage fetches one page of issues (all states, most recently
// updated first) and reports whether more pages remain. Pull requests
// are included in the raw response and filtered out by the caller.
func (c *Client) ListIssuesPage(
	ctx context.Context, owner, repo string, page, perPage int,
) ([]*gh.Issue, bool, error) {
	opts := &gh.IssueListByRepoOptions{
		State:     "all",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	var issues []*gh.Issue
	var nextPage int
	err := c.do(ctx, "list issues", func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		issues, resp, err = c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if resp != nil {
			nextPage = resp.NextPage
		}
		return resp, err
	})
	if err != nil {
		return nil, false, err
	}
	return issues, nextPage != 0, nil
}

// ListAllComments fetches every comment for an issue, exhausting
// pagination internally.
func (c *Client) ListAllComments(
	ctx context.Context, owner, repo string, number int,
) ([]*gh.IssueComment, error) {
	var allComments []*gh.IssueComment

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var comments []*gh.IssueComment
		var nextPage int
		err := c.do(ctx, "list comments", func() (*gh.Response, error) {
			var resp *gh.Response
			var err error
			comments, resp, err = c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
			if resp != nil {
				nextPage = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		allComments = append(allComments, comments...)
		if nextPage == 0 {
			break
		}
		opts.Page = nextPage
	}

	return allComments, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// do runs one API call with rate-limit pacing and the bounded
// quota-exhaustion retry loop.
func (c *Client) do(ctx context.Context, operation string, call func() (*gh.Response, error)) error {
	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		resp, err := call()
		c.updateRateLimitFromResponse(resp)
		if err == nil {
			return nil
		}

		wrapped := c.wrapError(err, operation)
		if !IsRateLimited(wrapped) {
			return wrapped
		}
		if attempt >= MaxQuotaRetries {
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, wrapped)
		}

		logger.Warn("Quota exhausted during %s, retry %d/%d in %s",
			operation, attempt+1, MaxQuotaRetries, QuotaRetryDelay)
		if sleepErr := c.sleep(ctx, QuotaRetryDelay); sleepErr != nil {
			return sleepErr
		}
	}
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Primary and secondary quota exhaustion.
	var rateLimitErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateLimitErr) || errors.As(err, &abuseErr) {
		return &RateLimitError{
			ResetAt:   c.rateLimiter.ResetTime(),
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		// A 403 with an empty quota is rate limiting in disguise.
		if ghErr.Response.StatusCode == 403 && c.rateLimiter.Remaining() == 0 {
			return &RateLimitError{
				ResetAt:   c.rateLimiter.ResetTime(),
				Remaining: 0,
				Limit:     c.rateLimiter.Limit(),
			}
		}
		return &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
			URL:        ghErr.Response.Request.URL.String(),
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
