package llm

import "context"

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Config selects and authenticates a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// LLM is a text-generation provider. Chat performs exactly one round trip;
// retry policy belongs to the caller.
type LLM interface {
	Chat(ctx context.Context, system string, messages []Message) (string, error)
	Provider() string
	Model() string
}
