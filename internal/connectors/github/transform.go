package github

import (
	"strconv"

	gh "github.com/google/go-github/v80/github"

	"github.com/issuescope/issuescope/internal/core/domain"
)

// transformIssue converts a GitHub API issue into the canonical record.
// Comments are attached later; derived fields (participants, scores,
// fingerprint) are computed by the orchestrator.
func transformIssue(repo string, issue *gh.Issue) domain.Issue {
	labels := make([]string, len(issue.Labels))
	for i, l := range issue.Labels {
		labels[i] = l.GetName()
	}

	out := domain.Issue{
		ID:           issue.GetNodeID(),
		Repo:         repo,
		Number:       issue.GetNumber(),
		Title:        issue.GetTitle(),
		Body:         issue.GetBody(),
		Author:       issue.GetUser().GetLogin(),
		State:        domain.IssueState(issue.GetState()),
		CreatedAt:    issue.GetCreatedAt().Time,
		UpdatedAt:    issue.GetUpdatedAt().Time,
		Labels:       labels,
		Reactions:    transformReactions(issue.Reactions),
		CommentCount: issue.GetComments(),
	}

	if closedAt := issue.ClosedAt; closedAt != nil {
		t := closedAt.Time
		out.ClosedAt = &t
	}

	out.Type = domain.ClassifyIssue(labels, out.Title, out.Body)
	return out
}

// transformComment converts a GitHub API comment.
func transformComment(comment *gh.IssueComment) domain.Comment {
	return domain.Comment{
		ID:        strconv.FormatInt(comment.GetID(), 10),
		Author:    comment.GetUser().GetLogin(),
		CreatedAt: comment.GetCreatedAt().Time,
		UpdatedAt: comment.GetUpdatedAt().Time,
		Body:      comment.GetBody(),
		Reactions: transformReactions(comment.Reactions),
	}
}

// transformReactions maps the API reaction rollup onto the domain type.
func transformReactions(r *gh.Reactions) domain.Reactions {
	if r == nil {
		return domain.Reactions{}
	}
	return domain.Reactions{
		Total:    r.GetTotalCount(),
		PlusOne:  r.GetPlusOne(),
		MinusOne: r.GetMinusOne(),
		Laugh:    r.GetLaugh(),
		Hooray:   r.GetHooray(),
		Confused: r.GetConfused(),
		Heart:    r.GetHeart(),
		Rocket:   r.GetRocket(),
		Eyes:     r.GetEyes(),
	}
}
