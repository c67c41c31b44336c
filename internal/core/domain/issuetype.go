package domain

import (
	"regexp"
	"strings"
)

// Label keyword sets, checked in priority order. Matching is exact on the
// lowercased label name.
var (
	bugLabels     = map[string]bool{"bug": true, "defect": true, "error": true, "crash": true}
	featureLabels = map[string]bool{"feature": true, "enhancement": true, "request": true, "new feature": true}
	contentLabels = map[string]bool{"content": true, "asset": true, "avatar": true, "world": true, "model": true}
)

// Text fallback patterns for the same keyword families, applied to
// title + body when no label matched.
var (
	bugPattern     = regexp.MustCompile(`bug|crash|error|broken|doesn't work|issue|problem|fail`)
	featurePattern = regexp.MustCompile(`feature|add|enhance|improve|request|would be nice|suggestion`)
	contentPattern = regexp.MustCompile(`content|asset|avatar|world|model|texture|material`)
)

// ClassifyIssue determines the issue type from labels first, then from the
// issue text. The first matching rule wins; all matching is case-insensitive.
func ClassifyIssue(labels []string, title, body string) IssueType {
	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.ToLower(l)
	}

	for _, l := range lowered {
		if bugLabels[l] {
			return TypeBug
		}
	}
	for _, l := range lowered {
		if featureLabels[l] {
			return TypeFeature
		}
	}
	for _, l := range lowered {
		if contentLabels[l] {
			return TypeContent
		}
	}

	text := strings.ToLower(title) + " " + strings.ToLower(body)
	switch {
	case bugPattern.MatchString(text):
		return TypeBug
	case featurePattern.MatchString(text):
		return TypeFeature
	case contentPattern.MatchString(text):
		return TypeContent
	default:
		return TypeOther
	}
}
