package domain

import (
	"math"
	"time"
)

// Scoring weights. Each term is additive and independently testable.
const (
	ageBaseline       = 100.0
	commentWeight     = 5
	reactionWeight    = 3
	participantWeight = 10
	replyWeight       = 3
	replyDepthWeight  = 10
	stateChangeWeight = 10

	recentBonusWeek  = 50
	recentBonusMonth = 25
)

// DefaultReplyDepth is the placeholder depth used until a reply-thread
// collaborator supplies real data.
const DefaultReplyDepth = 1

// ScoreInputs are the engagement signals feeding the activity score.
// TotalReplies and StateChanges default to zero and ReplyDepth to
// DefaultReplyDepth; they are reserved extension points.
type ScoreInputs struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Comments     int
	Reactions    int
	Participants int
	TotalReplies int
	ReplyDepth   int
	StateChanges int
}

// ActivityScore maps engagement signals to a synthetic ranking score.
// It is a pure function of its inputs and the supplied now; callers that
// need reproducibility (tests, history snapshots) inject a fixed clock.
func ActivityScore(in ScoreInputs, now time.Time) int {
	ageDays := now.Sub(in.CreatedAt).Hours() / 24
	ageScore := math.Max(0, ageBaseline-ageDays)

	score := ageScore
	score += float64(in.Comments * commentWeight)
	score += float64(in.Reactions * reactionWeight)
	score += float64(in.Participants * participantWeight)
	score += float64(recencyBonus(in.UpdatedAt, now))
	score += float64(in.TotalReplies * replyWeight)
	score += float64(in.ReplyDepth * replyDepthWeight)
	score += float64(in.StateChanges * stateChangeWeight)

	return int(math.Round(score))
}

// recencyBonus rewards recently updated issues.
func recencyBonus(updatedAt, now time.Time) int {
	sinceUpdate := now.Sub(updatedAt).Hours() / 24
	switch {
	case sinceUpdate < 7:
		return recentBonusWeek
	case sinceUpdate < 30:
		return recentBonusMonth
	default:
		return 0
	}
}

// ScoreIssue computes the activity score for an assembled issue.
func ScoreIssue(issue *Issue, now time.Time) int {
	depth := DefaultReplyDepth
	if issue.Engagement != nil && issue.Engagement.ReplyDepth > 0 {
		depth = issue.Engagement.ReplyDepth
	}

	return ActivityScore(ScoreInputs{
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
		Comments:     issue.CommentCount,
		Reactions:    issue.Reactions.Total,
		Participants: len(issue.Participants),
		TotalReplies: issue.TotalReplies,
		ReplyDepth:   depth,
	}, now)
}
