// Package llm provides factory functions for creating summarizer adapters.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/issuescope/issuescope/internal/adapters/driven/llm/anthropic"
	"github.com/issuescope/issuescope/internal/adapters/driven/llm/openai"
	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// pinger is implemented by adapters that support a connectivity check.
type pinger interface {
	Ping(ctx context.Context) error
}

// Settings selects and configures a summarization provider.
type Settings struct {
	// Provider is "anthropic", "openai" or "" to disable summarization.
	Provider string
	APIKey   string
	Model    string
}

// CreateSummarizer creates the summarizer for the configured provider.
// Returns nil when no provider is configured; summarization is optional.
func CreateSummarizer(settings Settings) (driven.Summarizer, error) {
	switch settings.Provider {
	case "":
		return nil, nil

	case "anthropic":
		return anthropic.NewSummarizer(anthropic.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	case "openai":
		return openai.NewSummarizer(openai.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported summarization provider: %s", settings.Provider)
	}
}

// CreateAndValidateSummarizer creates a summarizer and validates
// connectivity with a lightweight ping.
func CreateAndValidateSummarizer(settings Settings) (driven.Summarizer, error) {
	svc, err := CreateSummarizer(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSummarizerUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	p, ok := svc.(pinger)
	if !ok {
		return svc, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrSummarizerUnavailable, err)
	}

	return svc, nil
}
