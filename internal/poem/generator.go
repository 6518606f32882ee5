package poem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bowerhall/chainverse/internal/llm"
	"github.com/bowerhall/chainverse/internal/logger"
)

// ErrExhausted is returned after every generation attempt has failed. The
// wrapped error is the last one observed.
var ErrExhausted = errors.New("poem generation failed after all retries")

const (
	maxAttempts = 3
	baseBackoff = 2 * time.Second
)

const promptTemplate = `You are a poetic AI that creates beautiful, evocative poems.

Using ONLY the following keywords derived from the Solana blockchain, create a cohesive poem of 20-30 lines.

Keywords: %s

Instructions:
- Use all or most of these keywords naturally in the poem
- Create a coherent narrative or emotional arc
- The poem can be any mood - happy, sad, dark, light, mysterious, etc.
- Let the words guide the tone naturally
- Use vivid imagery and metaphor
- Make it flow well and feel complete
- Do NOT add a title
- Do NOT explain or comment on the poem
- ONLY output the poem itself

Write the poem now:`

// Generator turns a day's keywords into a poem through an LLM provider,
// retrying transient failures with exponential backoff.
type Generator struct {
	llm     llm.LLM
	backoff time.Duration
}

func NewGenerator(model llm.LLM) *Generator {
	return &Generator{llm: model, backoff: baseBackoff}
}

// Generate produces a poem from the keywords, in the order supplied. Up to
// 3 attempts are made; before the first retry it waits 2s, before the
// second 4s. A provider error or an empty completion counts as a failed
// attempt. After the last failure the error is wrapped in ErrExhausted.
func (g *Generator) Generate(ctx context.Context, keywords []string) (string, error) {
	prompt := buildPrompt(keywords)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.backoff << (attempt - 1)
			logger.Info("retrying poem generation", "attempt", attempt+1, "delay", delay)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		content, err := g.llm.Chat(ctx, "", []llm.Message{{Role: "user", Content: prompt}})
		if err == nil && content == "" {
			err = errors.New("empty completion")
		}
		if err == nil {
			return content, nil
		}

		logger.Warn("poem generation attempt failed", "attempt", attempt+1, "error", err)
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

func buildPrompt(keywords []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(keywords, ", "))
}
