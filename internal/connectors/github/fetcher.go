package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
	"github.com/issuescope/issuescope/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.IssueFetcher = (*Fetcher)(nil)

// Fetcher implements driven.IssueFetcher for one GitHub repository.
type Fetcher struct {
	client *Client
	owner  string
	name   string
}

// NewFetcher creates a fetcher for an "owner/name" repository identifier.
func NewFetcher(client *Client, repo string) (*Fetcher, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return &Fetcher{client: client, owner: owner, name: name}, nil
}

// Repo returns the "owner/name" identifier of the target repository.
func (f *Fetcher) Repo() string {
	return f.owner + "/" + f.name
}

// FetchPage returns one page of issues without comments attached, and
// whether more pages remain. Pull requests, which the issues endpoint
// also returns, are skipped.
func (f *Fetcher) FetchPage(ctx context.Context, page, perPage int) ([]domain.Issue, bool, error) {
	raw, more, err := f.client.ListIssuesPage(ctx, f.owner, f.name, page, perPage)
	if err != nil {
		return nil, false, err
	}

	issues := make([]domain.Issue, 0, len(raw))
	for _, issue := range raw {
		if issue.IsPullRequest() {
			logger.Debug("Skipping pull request #%d", issue.GetNumber())
			continue
		}
		issues = append(issues, transformIssue(f.Repo(), issue))
	}

	return issues, more, nil
}

// FetchComments returns every comment for an issue.
func (f *Fetcher) FetchComments(ctx context.Context, number int) ([]domain.Comment, error) {
	raw, err := f.client.ListAllComments(ctx, f.owner, f.name, number)
	if err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, len(raw))
	for i, c := range raw {
		comments[i] = transformComment(c)
	}
	return comments, nil
}
