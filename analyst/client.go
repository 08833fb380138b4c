// Package analyst is the gateway to the hosted text-to-SQL service.
//
// Ask never fails for transport problems, timeouts or error statuses:
// each becomes a single Text fragment the user can read. Only a 2xx
// response that cannot be understood is returned as an error, so the
// caller can stop processing that turn.
package analyst

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/session"
)

const (
	// NoRequestID marks responses that never reached the service.
	NoRequestID = "N/A"

	// RequestIDHeader carries the service's request identifier.
	RequestIDHeader = "X-Snowflake-Request-Id"

	timeoutText = "I'm sorry, but the request timed out. Please try again in a moment."
)

// Enhancer rewrites a question before it is sent.
type Enhancer interface {
	Enhance(ctx context.Context, question string) (string, error)
}

// Response is the normalized answer of one Ask.
type Response struct {
	Content   []session.Fragment
	RequestID string
	Err       error // the recovered failure behind an apology fragment, if any
}

// Client talks to the analyst message endpoint.
type Client struct {
	endpoint          string
	token             string
	semanticModelFile string
	timeout           time.Duration
	enhancer          Enhancer
	httpClient        *http.Client
}

// New builds a client from config. enhancer may be nil.
func New(cfg config.AnalystConfig, enhancer Enhancer) *Client {
	return &Client{
		endpoint:          cfg.Endpoint(),
		token:             cfg.Token,
		semanticModelFile: cfg.SemanticModelFile(),
		timeout:           cfg.Timeout(),
		enhancer:          enhancer,
		httpClient:        &http.Client{},
	}
}

// WithHTTPClient replaces the HTTP client, e.g. to add a transport.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

type wireRequest struct {
	Messages          []wireMessage `json:"messages"`
	SemanticModelFile string        `json:"semantic_model_file"`
}

type wireMessage struct {
	Role    string        `json:"role"`
	Content []wireContent `json:"content"`
}

type wireContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wireResponse struct {
	Message *struct {
		Content []json.RawMessage `json:"content"`
	} `json:"message"`
	RequestID string `json:"request_id"`
}

// Ask sends one utterance. The returned error is always a
// *MalformedResponseError; every other failure is folded into the
// response content.
//
// The timeout bounds the whole call, enhancement included.
func (c *Client) Ask(ctx context.Context, utterance string) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text := c.enhance(ctx, utterance)

	payload, err := json.Marshal(wireRequest{
		Messages: []wireMessage{{
			Role:    "user",
			Content: []wireContent{{Type: "text", Text: text}},
		}},
		SemanticModelFile: c.semanticModelFile,
	})
	if err != nil {
		return c.transportFailure(err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return c.transportFailure(err), nil
	}
	req.Header.Set("Authorization", `Snowflake Token="`+c.token+`"`)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failure(err), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failure(err), nil
	}
	requestID := resp.Header.Get(RequestIDHeader)
	applog.Event("ANALYST", "status=%d request_id=%s elapsed=%s", resp.StatusCode, requestID, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= 400 {
		be := &BackendError{Status: resp.StatusCode, Body: string(body), RequestID: requestID}
		applog.Error("analyst backend: %v", be)
		return Response{
			Content:   []session.Fragment{session.Text{Body: be.Error()}},
			RequestID: requestID,
			Err:       be,
		}, nil
	}

	return decode(body, requestID)
}

func decode(body []byte, requestID string) (Response, error) {
	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return Response{}, &MalformedResponseError{RequestID: requestID, Reason: err.Error(), Body: string(body)}
	}
	if wr.Message == nil || wr.Message.Content == nil {
		return Response{}, &MalformedResponseError{RequestID: requestID, Reason: "missing message.content", Body: string(body)}
	}
	if requestID == "" {
		requestID = wr.RequestID
	}

	frags := make([]session.Fragment, 0, len(wr.Message.Content))
	for _, raw := range wr.Message.Content {
		f, err := session.UnmarshalFragment(raw)
		var unknown *session.ErrUnknownKind
		switch {
		case errors.As(err, &unknown):
			applog.Warn("analyst: skipping fragment of unknown type %q", unknown.Tag)
			continue
		case err != nil:
			return Response{}, &MalformedResponseError{RequestID: requestID, Reason: err.Error(), Body: string(body)}
		}
		frags = append(frags, f)
	}
	return Response{Content: frags, RequestID: requestID}, nil
}

// enhance returns the rewritten question, or the original one when the
// enhancer is missing, fails, returns nothing or panics.
func (c *Client) enhance(ctx context.Context, utterance string) (out string) {
	out = utterance
	if c.enhancer == nil {
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			applog.Warn("prompt enhancement panicked: %v. Using original prompt.", r)
			out = utterance
		}
	}()
	enhanced, err := c.enhancer.Enhance(ctx, utterance)
	if err != nil {
		applog.Warn("prompt enhancement failed: %v. Using original prompt.", err)
		return utterance
	}
	if strings.TrimSpace(enhanced) == "" {
		return utterance
	}
	return enhanced
}

func (c *Client) failure(err error) Response {
	if isTimeout(err) {
		te := &TimeoutError{After: c.timeout, Err: err}
		applog.Error("%v", te)
		return Response{
			Content:   []session.Fragment{session.Text{Body: timeoutText}},
			RequestID: NoRequestID,
			Err:       te,
		}
	}
	return c.transportFailure(err)
}

func (c *Client) transportFailure(err error) Response {
	te := &TransportError{Err: err}
	applog.Error("%v", te)
	return Response{
		Content: []session.Fragment{session.Text{Body: fmt.Sprintf(
			"Connection error: %v. Please check your network connection and try again.", err)}},
		RequestID: NoRequestID,
		Err:       te,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
