package driven

import "context"

// Register names one of the four generated summary registers.
type Register string

// Summary registers.
const (
	RegisterShort     Register = "short"
	RegisterFull      Register = "full"
	RegisterTechnical Register = "technical"
	RegisterGeneral   Register = "general"
)

// AllRegisters lists the registers generated for every enriched issue.
var AllRegisters = []Register{RegisterShort, RegisterFull, RegisterTechnical, RegisterGeneral}

// SummaryRequest carries the issue text handed to the text-generation
// service.
type SummaryRequest struct {
	Title    string
	Body     string
	Comments []string
}

// Summarizer is the text-generation collaborator. It is a black box with
// no retry contract; the enrichment service treats failures as
// skip-and-continue.
//
// Implementations include Anthropic and OpenAI adapters.
type Summarizer interface {
	// GenerateRegister produces the Japanese summary text for one register.
	// Calls for different registers of the same issue are independent and
	// may run concurrently.
	GenerateRegister(ctx context.Context, register Register, req SummaryRequest) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
