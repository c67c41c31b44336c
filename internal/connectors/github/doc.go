// Package github implements the issue fetcher against the GitHub REST
// API, with proactive and reactive rate-limit handling.
package github
