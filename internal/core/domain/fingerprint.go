package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"unicode"
	"unicode/utf8"
)

// fingerprintCore is the canonical subset of an issue that participates in
// change detection: the fields whose change must invalidate enrichment.
type fingerprintCore struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Comments []string `json:"comments"`
}

// Fingerprint derives a deterministic content fingerprint for an issue from
// its number, title, body and comment bodies in order. Two issues with the
// same fingerprint are treated as unchanged for enrichment purposes.
func Fingerprint(issue *Issue) string {
	core := fingerprintCore{
		Number:   issue.Number,
		Title:    issue.Title,
		Body:     issue.Body,
		Comments: make([]string, len(issue.Comments)),
	}
	for i, c := range issue.Comments {
		core.Comments[i] = c.Body
	}

	// json.Marshal on a struct is deterministic: fields serialise in
	// declaration order.
	raw, err := json.Marshal(core)
	if err != nil {
		// Marshalling a struct of ints and strings cannot fail.
		panic(err)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// BatchFingerprint folds the per-issue fingerprints of a whole run into one
// value. It is built from the same canonical per-issue function, so the
// batch shortcut can never disagree with the per-issue comparison.
func BatchFingerprint(issues []Issue) string {
	h := sha256.New()
	for i := range issues {
		h.Write([]byte(Fingerprint(&issues[i])))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsForeignLanguage reports whether text is predominantly written in a
// foreign (Latin-script) language and is therefore eligible for
// translation-style summarisation. Latin letters must strictly outnumber
// non-ASCII code points; empty text is never eligible.
func IsForeignLanguage(text string) bool {
	if text == "" {
		return false
	}

	latin, nonASCII := 0, 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) && r < utf8.RuneSelf:
			latin++
		case r >= utf8.RuneSelf:
			nonASCII++
		}
	}

	return latin > nonASCII
}
