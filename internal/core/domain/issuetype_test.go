package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIssue_Labels(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   IssueType
	}{
		{name: "bug label", labels: []string{"bug"}, want: TypeBug},
		{name: "crash label", labels: []string{"crash"}, want: TypeBug},
		{name: "feature label", labels: []string{"enhancement"}, want: TypeFeature},
		{name: "multi-word label", labels: []string{"new feature"}, want: TypeFeature},
		{name: "content label", labels: []string{"avatar"}, want: TypeContent},
		{name: "case insensitive", labels: []string{"BUG"}, want: TypeBug},
		{name: "bug beats feature", labels: []string{"enhancement", "bug"}, want: TypeBug},
		{name: "feature beats content", labels: []string{"world", "request"}, want: TypeFeature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIssue(tt.labels, "unrelated title", "unrelated text"))
		})
	}
}

func TestClassifyIssue_TextFallback(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  IssueType
	}{
		{name: "crash in title", title: "App crash on startup", want: TypeBug},
		{name: "doesn't work phrase", title: "Login", body: "it doesn't work anymore", want: TypeBug},
		{name: "feature request in body", title: "Dark mode", body: "would be nice to have", want: TypeFeature},
		{name: "texture in body", title: "Missing files", body: "the texture looks wrong", want: TypeContent},
		{name: "nothing matches", title: "Question about licensing", body: "general wondering", want: TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIssue(nil, tt.title, tt.body))
		})
	}
}

func TestClassifyIssue_LabelBeatsText(t *testing.T) {
	// Text says bug, label says feature: labels win.
	got := ClassifyIssue([]string{"enhancement"}, "crash when saving", "")
	assert.Equal(t, TypeFeature, got)
}
