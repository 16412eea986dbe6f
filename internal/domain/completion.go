package domain

import "time"

// The requester always talks to the same model with deterministic sampling.
const (
	CompletionModel       = "gpt-4"
	CompletionTemperature = 0.0
)

// DefaultCompletionsEndpoint is the hosted chat-completion URL used when the
// config leaves provider.endpoint empty.
const DefaultCompletionsEndpoint = "https://api.openai.com/v1/chat/completions"

// CompletionResult is the outcome of one completion call.
type CompletionResult struct {
	ID       string
	Content  string
	Model    string
	Duration time.Duration
}
