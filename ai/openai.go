package ai

import (
	"context"
	"fmt"
	"strings"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	xaiBaseURL    = "https://api.x.ai/v1"
)

// OpenAI implements the Provider interface for OpenAI's Chat Completions
// API and compatible endpoints such as xAI's Grok.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	label   string
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAI{apiKey: apiKey, model: model, baseURL: openAIBaseURL, label: "OpenAI"}
}

// NewGrok creates a provider for xAI's OpenAI-compatible API.
func NewGrok(apiKey, model string) *OpenAI {
	if model == "" {
		model = "grok-3"
	}
	return &OpenAI{apiKey: apiKey, model: model, baseURL: xaiBaseURL, label: "Grok"}
}

// WithBaseURL points the provider at another compatible endpoint.
func (o *OpenAI) WithBaseURL(u string) *OpenAI {
	o.baseURL = strings.TrimSuffix(u, "/")
	return o
}

func (o *OpenAI) Name() string {
	return fmt.Sprintf("%s (%s)", o.label, o.model)
}

func (o *OpenAI) Chat(ctx context.Context, messages []Message) (string, error) {
	name := strings.ToLower(o.label)
	ep := endpoint{
		name:    name,
		url:     o.baseURL + "/chat/completions",
		headers: map[string]string{"Authorization": "Bearer " + o.apiKey},
	}
	req := struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}{o.model, toChatMessages(messages)}

	var reply struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := ep.post(ctx, req, &reply); err != nil {
		return "", err
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", name)
	}
	return reply.Choices[0].Message.Content, nil
}
