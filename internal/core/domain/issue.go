package domain

import (
	"fmt"
	"time"
)

// IssueState is the lifecycle state of an issue on the forge.
type IssueState string

// Issue states.
const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

// IssueType is the coarse classification derived from labels and text.
type IssueType string

// Issue types, in classification priority order.
const (
	TypeBug     IssueType = "bug"
	TypeFeature IssueType = "feature"
	TypeContent IssueType = "content"
	TypeOther   IssueType = "other"
)

// Reactions holds the per-category reaction counts plus the total.
// The category names mirror the forge API payload.
type Reactions struct {
	Total    int `json:"total"`
	PlusOne  int `json:"+1"`
	MinusOne int `json:"-1"`
	Laugh    int `json:"laugh"`
	Hooray   int `json:"hooray"`
	Confused int `json:"confused"`
	Heart    int `json:"heart"`
	Rocket   int `json:"rocket"`
	Eyes     int `json:"eyes"`
}

// Reply is a nested reply beneath a comment.
type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a single issue comment with its reactions and replies.
type Comment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Body       string    `json:"body"`
	Reactions  Reactions `json:"reactions"`
	Replies    []Reply   `json:"replies"`
	ReplyCount int       `json:"reply_count"`
}

// SummaryRegisters holds the four generated text registers for one language.
type SummaryRegisters struct {
	Short       string    `json:"short"`
	Full        string    `json:"full"`
	Technical   string    `json:"technical"`
	General     string    `json:"general"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Summary is the machine-generated summary attached to an issue.
// Only the Japanese variant is produced today.
type Summary struct {
	Ja SummaryRegisters `json:"ja"`
}

// HistoryEntry is one append-only engagement snapshot taken per sync run.
type HistoryEntry struct {
	Date          time.Time `json:"date"`
	Comments      int       `json:"comments"`
	Replies       int       `json:"replies"`
	Reactions     Reactions `json:"reactions"`
	ActivityScore int       `json:"activity_score"`
}

// EngagementMetrics are optional derived reply-thread metrics.
// These are reserved extension points; no collaborator populates them yet.
type EngagementMetrics struct {
	ReplyDepth   int     `json:"reply_depth"`
	ReplyBreadth int     `json:"reply_breadth"`
	AvgReplyTime float64 `json:"avg_reply_time"`
}

// RelatedIssue is an optional ranked link to another issue.
type RelatedIssue struct {
	Number       int     `json:"number"`
	Similarity   float64 `json:"similarity"`
	RelationType string  `json:"relation_type"`
}

// Issue is the canonical persisted record for one forge issue.
// Identity is (Repo, Number); ID carries the forge's opaque node identifier.
type Issue struct {
	ID     string `json:"id"`
	Repo   string `json:"repo"`
	Number int    `json:"number"`

	Title  string     `json:"title"`
	Body   string     `json:"body"`
	Author string     `json:"author"`
	State  IssueState `json:"state"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	Labels    []string  `json:"labels"`
	Type      IssueType `json:"issue_type"`
	Reactions Reactions `json:"reactions"`

	// Participants is the issue author plus every distinct comment author,
	// in first-seen order.
	Participants []string  `json:"participants"`
	CommentCount int       `json:"comments"`
	Comments     []Comment `json:"comments_detail"`
	TotalReplies int       `json:"total_replies"`

	ActivityScore int `json:"activity_score"`
	// PriorityScore is externally assigned. When present it takes precedence
	// over ActivityScore for ranking but never overwrites it.
	PriorityScore        *int   `json:"priority_score,omitempty"`
	ImplementationStatus string `json:"implementation_status,omitempty"`

	Engagement *EngagementMetrics `json:"engagement_metrics,omitempty"`
	Related    []RelatedIssue     `json:"related_issues,omitempty"`

	History []HistoryEntry `json:"history"`
	Summary *Summary       `json:"summary,omitempty"`

	// Fingerprint is the content fingerprint from the last enrichment pass.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Key returns the persistence identity "repo#number".
func (i *Issue) Key() string {
	return fmt.Sprintf("%s#%d", i.Repo, i.Number)
}

// RankScore is the score used for ordering issues: the external priority
// score when assigned, the computed activity score otherwise.
func (i *Issue) RankScore() int {
	if i.PriorityScore != nil {
		return *i.PriorityScore
	}
	return i.ActivityScore
}

// Participants computes the unique participant list for an issue: the author
// first, then each distinct comment author in order of first appearance.
func Participants(author string, comments []Comment) []string {
	seen := make(map[string]bool, len(comments)+1)
	participants := make([]string, 0, len(comments)+1)

	if author != "" {
		seen[author] = true
		participants = append(participants, author)
	}

	for _, c := range comments {
		if c.Author == "" || seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		participants = append(participants, c.Author)
	}

	return participants
}

// TotalReplies sums the per-comment reply counts. Reply data is not yet
// supplied by any collaborator, so this is normally zero.
func TotalReplies(comments []Comment) int {
	total := 0
	for _, c := range comments {
		total += c.ReplyCount
	}
	return total
}
