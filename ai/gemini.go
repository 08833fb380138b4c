package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini implements the Provider interface for Google's Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
}

var _ Provider = (*Gemini)(nil)

// NewGemini creates a Gemini provider.
func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{apiKey: apiKey, model: model, baseURL: geminiBaseURL}
}

// WithBaseURL points the provider at another endpoint.
func (g *Gemini) WithBaseURL(u string) *Gemini {
	g.baseURL = strings.TrimSuffix(u, "/")
	return g
}

func (g *Gemini) Name() string {
	return fmt.Sprintf("Gemini (%s)", g.model)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

func (g *Gemini) Chat(ctx context.Context, messages []Message) (string, error) {
	system, rest := splitSystem(messages)

	var req geminiRequest
	for _, m := range rest {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	// The key travels in the query string, so it is redacted from errors.
	ep := endpoint{
		name: "gemini",
		url: fmt.Sprintf("%s/models/%s:generateContent?key=%s",
			g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey)),
		secret: g.apiKey,
	}
	var reply struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
	if err := ep.post(ctx, req, &reply); err != nil {
		return "", err
	}
	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no content")
	}

	var text strings.Builder
	for _, p := range reply.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}
