package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Ollama talks to a local Ollama server. It needs no key, which makes
// it the usual choice for offline summaries.
type Ollama struct {
	host  string
	model string
}

var _ Provider = (*Ollama)(nil)

func NewOllama(host, model string) *Ollama {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &Ollama{host: strings.TrimSuffix(host, "/"), model: model}
}

func (o *Ollama) Name() string { return "Ollama (" + o.model + ")" }

func (o *Ollama) Chat(ctx context.Context, messages []Message) (string, error) {
	ep := endpoint{name: "ollama", url: o.host + "/api/chat"}
	req := struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
		Stream   bool          `json:"stream"`
	}{o.model, toChatMessages(messages), false}

	var reply struct {
		Message chatMessage `json:"message"`
	}
	if err := ep.post(ctx, req, &reply); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w (is Ollama running at %s?)", err, o.host)
	}
	if reply.Message.Content == "" {
		return "", errors.New("ollama returned empty response")
	}
	return reply.Message.Content, nil
}
