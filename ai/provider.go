// Package ai defines the interface for hosted language-model providers
// and the two jobs paiAnalyst gives them outside retrieval: rewriting
// questions against the semantic model and summarizing results.
//
// Design decisions:
//   - Provider is an interface so we can swap backends (OpenAI, Anthropic,
//     Gemini, Grok, Ollama) without changing callers.
//   - All methods accept context for cancellation (async-friendly).
//   - Providers talk JSON over net/http; each endpoint base URL can be
//     overridden for gateways and tests.
//   - The placeholder provider returns canned responses for development.
package ai

import (
	"context"
	"errors"
)

// Message represents a chat message.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Provider is the interface all AI backends must implement.
type Provider interface {
	// Chat sends a conversation and returns the assistant's reply.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Name returns the provider name for display.
	Name() string
}

// ErrNotConfigured means a feature needs a provider or credential that
// is missing. Callers degrade instead of failing.
var ErrNotConfigured = errors.New("ai provider not configured")

// splitSystem pulls the last system message out of messages.
func splitSystem(messages []Message) (system string, rest []Message) {
	rest = make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
