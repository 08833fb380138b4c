package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiAnalyst/ai"
	"github.com/DachengChen/paiAnalyst/analyst"
	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/db"
	"github.com/DachengChen/paiAnalyst/session"
	"github.com/DachengChen/paiAnalyst/table"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	ai.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

type fakeGateway struct {
	resp analyst.Response
	err  error
}

func (g fakeGateway) Ask(context.Context, string) (analyst.Response, error) {
	return g.resp, g.err
}

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Chat(context.Context, []ai.Message) (string, error) {
	return "Two regions, US leads.", nil
}

const dealsSQL = "SELECT region, deals FROM deals ORDER BY region"

func newTestServer(t *testing.T, gw chat.Gateway) *Server {
	t.Helper()
	ctx := context.Background()
	warehouse, err := db.Connect(ctx, config.WarehouseConfig{Driver: config.DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(warehouse.Close)
	for _, stmt := range []string{
		`CREATE TABLE deals (region TEXT, deals INTEGER)`,
		`INSERT INTO deals VALUES ('EU', 3), ('US', 5)`,
	} {
		_, err := warehouse.SQL.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	s := New(func() *chat.Controller {
		return chat.New(session.NewStore(), gw, warehouse, nil)
	}, ai.NewSummarizer(stubProvider{}))
	s.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }
	return s
}

func sqlGateway() fakeGateway {
	return fakeGateway{resp: analyst.Response{
		Content: []session.Fragment{
			session.Text{Body: "Deals by region:"},
			session.SQL{Statement: dealsSQL},
		},
		RequestID: "req-9",
	}}
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])
	return resp["id"]
}

func TestHealthAndSamples(t *testing.T) {
	s := newTestServer(t, sqlGateway())
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/health", nil).Code)

	rec := do(t, s, http.MethodGet, "/api/samples?mode=unstructured", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mode":"unstructured"`)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/samples?mode=nope", nil).Code)
}

func TestMessageFlow(t *testing.T) {
	s := newTestServer(t, sqlGateway())
	id := createSession(t, s)
	base := "/api/sessions/" + id

	rec := do(t, s, http.MethodPost, base+"/messages", textRequest{Text: "deals by region"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Analyst []json.RawMessage `json:"analyst"`
		Results []struct {
			Fragment  int    `json:"fragment"`
			Statement string `json:"statement"`
			Table     struct {
				Columns []columnResponse `json:"columns"`
				Rows    [][]any          `json:"rows"`
				Metrics table.Metrics    `json:"metrics"`
			} `json:"table"`
			Suggested struct {
				Family string `json:"family"`
				X      string `json:"x"`
				Y      string `json:"y"`
			} `json:"suggested"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Analyst, 1)
	require.Len(t, out.Results, 1)
	r := out.Results[0]
	assert.Equal(t, 1, r.Fragment)
	assert.Equal(t, dealsSQL, r.Statement)
	assert.Equal(t, []columnResponse{{"region", "categorical"}, {"deals", "numeric"}}, r.Table.Columns)
	assert.Equal(t, table.Metrics{Rows: "2", Columns: "2"}, r.Table.Metrics)
	assert.Equal(t, "bar", r.Suggested.Family)
	assert.Equal(t, "region", r.Suggested.X)

	rec = do(t, s, http.MethodGet, base+"/turns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":"req-9"`)

	rec = do(t, s, http.MethodGet, base+"/turns/1/export?fragment=1&format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "region,deals\nEU,3\nUS,5\n", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "export_20240309_140506.csv")

	rec = do(t, s, http.MethodGet, base+"/turns/1/export?fragment=1&format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	x, err := table.ReadXLSX(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "deals"}, x.Names())

	rec = do(t, s, http.MethodGet, base+"/turns/1/summary?fragment=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "US leads")

	rec = do(t, s, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cortex_chat_20240309_140506.json")
	assert.Contains(t, rec.Body.String(), `"text": "deals by region"`)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, base+"/turns/0/export?fragment=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, base+"/turns/x/export?fragment=1", nil).Code)
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(t, sqlGateway())
	id := createSession(t, s)
	base := "/api/sessions/" + id
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/messages", textRequest{Text: "q"}).Code)

	rec := do(t, s, http.MethodPost, base+"/chart", chartRequest{Turn: 1, Fragment: 1, Family: "pie", X: "region", Y: "deals"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"arc"`)

	rec = do(t, s, http.MethodPost, base+"/chart", chartRequest{Turn: 1, Fragment: 1, Family: "pie", X: "region", Y: "deals", Sort: "y_desc"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var verr map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.NotEmpty(t, verr["error"])

	rec = do(t, s, http.MethodPost, base+"/chart", chartRequest{Turn: 1, Fragment: 1, Family: "donut", X: "region", Y: "deals"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t, sqlGateway())
	a, b := createSession(t, s), createSession(t, s)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/sessions/"+a+"/messages", textRequest{Text: "q"}).Code)

	rec := do(t, s, http.MethodGet, "/api/sessions/"+b+"/turns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"turns":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/sessions/"+a+"/turns", nil).Code)
	rec = do(t, s, http.MethodGet, "/api/sessions/"+a+"/turns", nil)
	assert.JSONEq(t, `{"turns":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/sessions/"+a, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/sessions/"+a+"/turns", nil).Code)
}

func TestModeAndPreferences(t *testing.T) {
	s := newTestServer(t, sqlGateway())
	base := "/api/sessions/" + createSession(t, s)

	rec := do(t, s, http.MethodPut, base+"/mode", modeRequest{Mode: "unstructured"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chat_mode":"unstructured"`)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, base+"/mode", modeRequest{Mode: "x"}).Code)

	on := true
	rec = do(t, s, http.MethodPut, base+"/preferences", preferencesRequest{ShowDebug: &on})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"show_debug":true`)

	rec = do(t, s, http.MethodPost, base+"/messages", textRequest{Text: "anything"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), strings.TrimSuffix(chat.NoticeNoRetriever, "."))
}

func TestSuggestionsAndErrors(t *testing.T) {
	s := newTestServer(t, fakeGateway{err: &analyst.MalformedResponseError{RequestID: "r1", Reason: "missing message"}})
	base := "/api/sessions/" + createSession(t, s)

	rec := do(t, s, http.MethodPost, base+"/suggestions", textRequest{Text: "Deals by year?"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":"r1"`)

	rec = do(t, s, http.MethodGet, base+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending_suggestion":""`)
	assert.Contains(t, rec.Body.String(), "missing message")

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, base+"/messages", textRequest{Text: " "}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/sessions/nope/messages", textRequest{Text: "q"}).Code)
}
