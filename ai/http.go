package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// chatMessage is the {role, content} pair shared by the OpenAI,
// Anthropic and Ollama wire formats.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toChatMessages(messages []Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatMessage(m))
	}
	return out
}

// endpoint is one JSON API a provider talks to.
type endpoint struct {
	name    string // lower-case provider name used in errors
	url     string
	headers map[string]string
	secret  string // redacted from transport errors
}

// post sends body as JSON and decodes a 200 reply into out. Any other
// status becomes an error carrying the response body.
func (e endpoint) post(ctx context.Context, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return redactKey(err, e.secret)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", e.name, redactKey(err, e.secret))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s API error (%d): %s", e.name, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s parse error: %w", e.name, err)
	}
	return nil
}

// redactKey hides an API key that net/http echoes back inside
// *url.Error messages. Errors without the key are returned unchanged.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
