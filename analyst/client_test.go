package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/session"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	m.Run()
}

func newTestClient(url string, timeoutMS int, enh Enhancer) *Client {
	return New(config.AnalystConfig{
		Host:      url,
		Token:     "tok",
		Database:  "DB",
		Schema:    "S",
		Stage:     "ST",
		File:      "model.yaml",
		TimeoutMS: timeoutMS,
	}, enh)
}

func TestAskSuccess(t *testing.T) {
	var got wireRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/cortex/analyst/message", r.URL.Path)
		assert.Equal(t, `Snowflake Token="tok"`, r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set(RequestIDHeader, "req-123")
		io.WriteString(w, `{"message":{"role":"analyst","content":[
			{"type":"text","text":"This is our interpretation."},
			{"type":"chart","spec":{}},
			{"type":"sql","statement":"SELECT 1"},
			{"type":"suggestions","suggestions":["a","b"]}
		]}}`) //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, 0, nil).Ask(context.Background(), "top 5 companies")
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.RequestID)
	assert.NoError(t, resp.Err)
	assert.Equal(t, []session.Fragment{
		session.Text{Body: "This is our interpretation."},
		session.SQL{Statement: "SELECT 1"},
		session.Suggestions{Options: []string{"a", "b"}},
	}, resp.Content)

	assert.Equal(t, "@DB.S.ST/model.yaml", got.SemanticModelFile)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, []wireContent{{Type: "text", Text: "top 5 companies"}}, got.Messages[0].Content)
}

func TestAskBackendErrorIsVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "internal error") //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, 0, nil).Ask(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, session.Text{Body: "API Error (500): internal error"}, resp.Content[0])
	assert.Empty(t, resp.RequestID)

	var be *BackendError
	require.ErrorAs(t, resp.Err, &be)
	assert.Equal(t, 500, be.Status)
}

func TestAskTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	resp, err := newTestClient(srv.URL, 50, nil).Ask(context.Background(), "top 5 companies")
	require.NoError(t, err)
	assert.Equal(t, NoRequestID, resp.RequestID)
	assert.Equal(t, []session.Fragment{session.Text{Body: timeoutText}}, resp.Content)

	var te *TimeoutError
	require.ErrorAs(t, resp.Err, &te)
	assert.Equal(t, 50*time.Millisecond, te.After)
}

func TestAskTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	resp, err := newTestClient(url, 0, nil).Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, NoRequestID, resp.RequestID)
	require.Len(t, resp.Content, 1)
	assert.Contains(t, resp.Content[0].(session.Text).Body, "Connection error: ")
	assert.Contains(t, resp.Content[0].(session.Text).Body, "Please check your network connection and try again.")

	var te *TransportError
	assert.ErrorAs(t, resp.Err, &te)
}

func TestAskMalformed(t *testing.T) {
	for _, body := range []string{`not json`, `{"other":1}`, `{"message":{}}`, `{"message":{"content":[42]}}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(RequestIDHeader, "req-9")
			io.WriteString(w, body) //nolint:errcheck
		}))

		_, err := newTestClient(srv.URL, 0, nil).Ask(context.Background(), "q")
		var me *MalformedResponseError
		require.ErrorAs(t, err, &me, body)
		assert.Equal(t, "req-9", me.RequestID)
		srv.Close()
	}
}

type enhancerFunc func(ctx context.Context, q string) (string, error)

func (f enhancerFunc) Enhance(ctx context.Context, q string) (string, error) { return f(ctx, q) }

func TestEnhancementFallsBack(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req wireRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sent = req.Messages[0].Content[0].Text
		io.WriteString(w, `{"message":{"content":[]}}`) //nolint:errcheck
	}))
	defer srv.Close()

	tests := []struct {
		name string
		enh  Enhancer
		want string
	}{
		{"rewrites", enhancerFunc(func(context.Context, string) (string, error) { return "DEALS.COMPANY top 5", nil }), "DEALS.COMPANY top 5"},
		{"error", enhancerFunc(func(context.Context, string) (string, error) { return "", errors.New("no key") }), "top 5"},
		{"empty", enhancerFunc(func(context.Context, string) (string, error) { return "  ", nil }), "top 5"},
		{"panic", enhancerFunc(func(context.Context, string) (string, error) { panic("boom") }), "top 5"},
	}
	for _, tt := range tests {
		resp, err := newTestClient(srv.URL, 0, tt.enh).Ask(context.Background(), "top 5")
		require.NoError(t, err, tt.name)
		assert.Empty(t, resp.Content, tt.name)
		assert.Equal(t, tt.want, sent, tt.name)
	}
}

func TestAskTimeoutCoversEnhancement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":{"content":[]}}`) //nolint:errcheck
	}))
	defer srv.Close()

	stalled := enhancerFunc(func(ctx context.Context, q string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	done := make(chan Response, 1)
	go func() {
		resp, err := newTestClient(srv.URL, 100, stalled).Ask(context.Background(), "top 5")
		assert.NoError(t, err)
		done <- resp
	}()

	select {
	case resp := <-done:
		var te *TimeoutError
		require.ErrorAs(t, resp.Err, &te)
		assert.Equal(t, []session.Fragment{session.Text{Body: timeoutText}}, resp.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("Ask did not return after the 100ms timeout")
	}
}
