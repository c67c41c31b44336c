// Package domain contains the core entities and pure business logic:
// the Issue record and its nested types, activity scoring, issue-type
// classification, content fingerprinting and the language gate.
// It has no dependencies on infrastructure packages.
package domain
