package ai

import (
	"context"
	"fmt"
	"time"
)

// Placeholder is a mock AI provider for development.
type Placeholder struct {
	delay time.Duration
}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{delay: 300 * time.Millisecond}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) Chat(ctx context.Context, messages []Message) (string, error) {
	// Simulate network latency
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if len(messages) == 0 {
		return "No messages provided.", nil
	}

	last := messages[len(messages)-1].Content
	return fmt.Sprintf("[Placeholder AI] You asked: %q. "+
		"Configure a real provider (OpenAI, Anthropic, Gemini, Grok, Ollama) to get actual answers.",
		truncate(last, 200)), nil
}

// Unavailable stands in for a provider whose configuration is
// incomplete. Every call fails with the configuration error, so one
// missing key only affects the model it belongs to.
type Unavailable struct {
	name string
	err  error
}

var _ Provider = (*Unavailable)(nil)

func (u *Unavailable) Name() string { return u.name }

func (u *Unavailable) Chat(context.Context, []Message) (string, error) {
	return "", u.err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
