package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var scoringNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestActivityScore_AgeBaseline(t *testing.T) {
	tests := []struct {
		name    string
		ageDays int
		want    int
	}{
		{name: "brand new", ageDays: 0, want: 100},
		{name: "ten days old", ageDays: 10, want: 90},
		{name: "at baseline", ageDays: 100, want: 0},
		{name: "older than baseline clamps to zero", ageDays: 400, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ScoreInputs{
				CreatedAt: scoringNow.AddDate(0, 0, -tt.ageDays),
				// Updated long ago so no recency bonus interferes.
				UpdatedAt: scoringNow.AddDate(0, 0, -100),
			}
			assert.Equal(t, tt.want, ActivityScore(in, scoringNow))
		})
	}
}

func TestActivityScore_EngagementWeights(t *testing.T) {
	in := ScoreInputs{
		CreatedAt:    scoringNow.AddDate(0, 0, -100), // age term zero
		UpdatedAt:    scoringNow.AddDate(0, 0, -100), // no recency bonus
		Comments:     3,                              // +15
		Reactions:    4,                              // +12
		Participants: 2,                              // +20
		TotalReplies: 5,                              // +15
		ReplyDepth:   2,                              // +20
		StateChanges: 1,                              // +10
	}
	assert.Equal(t, 92, ActivityScore(in, scoringNow))
}

func TestActivityScore_RecencyBonus(t *testing.T) {
	tests := []struct {
		name        string
		updatedDays int
		want        int
	}{
		{name: "updated this week", updatedDays: 2, want: 50},
		{name: "updated this month", updatedDays: 14, want: 25},
		{name: "exactly seven days drops to month tier", updatedDays: 7, want: 25},
		{name: "stale", updatedDays: 60, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ScoreInputs{
				CreatedAt: scoringNow.AddDate(0, 0, -100),
				UpdatedAt: scoringNow.AddDate(0, 0, -tt.updatedDays),
			}
			assert.Equal(t, tt.want, ActivityScore(in, scoringNow))
		})
	}
}

func TestActivityScore_RoundsFractionalAge(t *testing.T) {
	in := ScoreInputs{
		CreatedAt: scoringNow.Add(-36 * time.Hour), // 1.5 days -> 98.5
		UpdatedAt: scoringNow.AddDate(0, 0, -100),
	}
	// 98.5 rounds half away from zero.
	assert.Equal(t, 99, ActivityScore(in, scoringNow))
}

func TestScoreIssue(t *testing.T) {
	issue := &Issue{
		CreatedAt:    scoringNow.AddDate(0, 0, -10),
		UpdatedAt:    scoringNow.AddDate(0, 0, -2),
		CommentCount: 3,
		Reactions:    Reactions{Total: 4},
		Participants: []string{"alice", "bob"},
	}

	// age 90 + comments 15 + reactions 12 + participants 20 +
	// recency 50 + default reply depth 10.
	assert.Equal(t, 197, ScoreIssue(issue, scoringNow))
}

func TestScoreIssue_UsesEngagementDepthWhenPresent(t *testing.T) {
	issue := &Issue{
		CreatedAt:  scoringNow.AddDate(0, 0, -100),
		UpdatedAt:  scoringNow.AddDate(0, 0, -100),
		Engagement: &EngagementMetrics{ReplyDepth: 3},
	}
	assert.Equal(t, 30, ScoreIssue(issue, scoringNow))
}

func TestRankScore_PriorityOverridesActivity(t *testing.T) {
	priority := 500
	issue := &Issue{ActivityScore: 120, PriorityScore: &priority}
	assert.Equal(t, 500, issue.RankScore())

	issue.PriorityScore = nil
	assert.Equal(t, 120, issue.RankScore())
}
