package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fingerprintIssue(number int, title, body string, comments ...string) *Issue {
	issue := &Issue{Number: number, Title: title, Body: body}
	for _, c := range comments {
		issue.Comments = append(issue.Comments, Comment{Body: c})
	}
	return issue
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := fingerprintIssue(42, "title", "body", "first", "second")
	b := fingerprintIssue(42, "title", "body", "first", "second")
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	base := fingerprintIssue(42, "title", "body", "comment")

	changed := []*Issue{
		fingerprintIssue(43, "title", "body", "comment"),
		fingerprintIssue(42, "other", "body", "comment"),
		fingerprintIssue(42, "title", "other", "comment"),
		fingerprintIssue(42, "title", "body", "other"),
		fingerprintIssue(42, "title", "body", "comment", "added"),
		fingerprintIssue(42, "title", "body"),
	}
	for _, issue := range changed {
		assert.NotEqual(t, Fingerprint(base), Fingerprint(issue))
	}
}

func TestFingerprint_CommentOrderMatters(t *testing.T) {
	a := fingerprintIssue(1, "t", "b", "x", "y")
	b := fingerprintIssue(1, "t", "b", "y", "x")
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_IgnoresVolatileFields(t *testing.T) {
	a := fingerprintIssue(7, "t", "b")
	b := fingerprintIssue(7, "t", "b")
	b.ActivityScore = 999
	b.State = StateClosed
	b.Labels = []string{"bug"}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestBatchFingerprint(t *testing.T) {
	a := *fingerprintIssue(1, "one", "")
	b := *fingerprintIssue(2, "two", "")

	same := BatchFingerprint([]Issue{a, b})
	assert.Equal(t, same, BatchFingerprint([]Issue{a, b}))

	// Order and content both matter.
	assert.NotEqual(t, same, BatchFingerprint([]Issue{b, a}))

	c := a
	c.Title = "changed"
	assert.NotEqual(t, same, BatchFingerprint([]Issue{c, b}))
}

func TestIsForeignLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "english", text: "The login button crashes the app", want: true},
		{name: "japanese", text: "ログインボタンを押すと落ちます", want: false},
		{name: "empty", text: "", want: false},
		{name: "only punctuation", text: "!!! ???", want: false},
		{name: "mostly english with a little japanese", text: "crash occurs on ログイン screen every time", want: true},
		{name: "mostly japanese with a little english", text: "ログイン画面でクラッシュします: app", want: false},
		{name: "digits do not count as latin", text: "12345", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsForeignLanguage(tt.text))
		})
	}
}
