package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	anthropicBaseURL   = "https://api.anthropic.com/v1"
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

// Anthropic implements the Provider interface for the Anthropic Messages API.
type Anthropic struct {
	apiKey  string
	model   string
	baseURL string
}

var _ Provider = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Anthropic{apiKey: apiKey, model: model, baseURL: anthropicBaseURL}
}

// WithBaseURL points the provider at another endpoint.
func (a *Anthropic) WithBaseURL(u string) *Anthropic {
	a.baseURL = strings.TrimSuffix(u, "/")
	return a
}

func (a *Anthropic) Name() string {
	return fmt.Sprintf("Anthropic (%s)", a.model)
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicReply struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Chat lifts the system prompt into the top-level field; the Messages
// API rejects a "system" role inside messages.
func (a *Anthropic) Chat(ctx context.Context, messages []Message) (string, error) {
	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return "", errors.New("anthropic requires at least one user message")
	}

	ep := endpoint{
		name: "anthropic",
		url:  a.baseURL + "/messages",
		headers: map[string]string{
			"x-api-key":         a.apiKey,
			"anthropic-version": anthropicVersion,
		},
	}
	var reply anthropicReply
	err := ep.post(ctx, anthropicRequest{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages:  toChatMessages(rest),
	}, &reply)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic returned no text content")
	}
	return text.String(), nil
}
