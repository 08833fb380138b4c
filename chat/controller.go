// Package chat drives one conversation: it dispatches utterances to the
// structured analyst or to the multi-model retriever, filters what comes
// back, executes returned SQL and records every turn in the session
// store.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DachengChen/paiAnalyst/analyst"
	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/chart"
	"github.com/DachengChen/paiAnalyst/db"
	"github.com/DachengChen/paiAnalyst/interpret"
	"github.com/DachengChen/paiAnalyst/retrieval"
	"github.com/DachengChen/paiAnalyst/session"
	"github.com/DachengChen/paiAnalyst/table"
)

// State is the controller's position in the submit cycle.
type State int

const (
	Idle State = iota
	AwaitingBackend
	Rendering
)

func (s State) String() string {
	switch s {
	case AwaitingBackend:
		return "awaiting_backend"
	case Rendering:
		return "rendering"
	default:
		return "idle"
	}
}

var (
	ErrEmptyUtterance = errors.New("nothing to submit")
	ErrNoWarehouse    = errors.New("no warehouse connection configured")
	ErrNoSuchTurn     = errors.New("no such turn")
	ErrNotSQL         = errors.New("fragment is not a SQL statement")
)

// Notices shown as analyst text when a backend is missing.
const (
	NoticeNoAnalyst   = "The structured data analyst is not configured."
	NoticeNoRetriever = "Document Q&A is not configured. Index some documents first."
)

// Gateway answers structured-mode utterances.
type Gateway interface {
	Ask(ctx context.Context, utterance string) (analyst.Response, error)
}

// Answerer answers unstructured-mode questions, one answer per model.
type Answerer interface {
	Ask(ctx context.Context, question string) ([]retrieval.Answer, error)
}

// Result is one executed SQL fragment.
type Result struct {
	Fragment  int // index of the SQL fragment in the turn's content
	Statement string
	Table     *table.Table
	Err       error
	Suggested *chart.Spec // nil when no chart fits the table
}

// Outcome reports what one submit did.
type Outcome struct {
	User    session.Turn
	Analyst []session.Turn
	Results []Result
	Answers []retrieval.Answer

	// Discarded is set when the session was cleared while the backend
	// was answering; nothing was appended.
	Discarded bool
}

// Controller runs submits for one session.
type Controller struct {
	store    *session.Store
	gateway  Gateway
	executor db.Executor
	multi    Answerer
	now      func() time.Time

	mu    sync.Mutex
	state State
	gen   uint64
}

// New returns a controller over store. Any backend may be nil; the
// matching mode then answers with a notice.
func New(store *session.Store, gateway Gateway, executor db.Executor, multi Answerer) *Controller {
	if store == nil {
		store = session.NewStore()
	}
	return &Controller{
		store:    store,
		gateway:  gateway,
		executor: executor,
		multi:    multi,
		now:      time.Now,
	}
}

// Store returns the session store.
func (c *Controller) Store() *session.Store { return c.store }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// SetMode switches between the structured analyst and document Q&A.
func (c *Controller) SetMode(m session.Mode) {
	c.store.SetFlag(session.FlagChatMode, m)
}

// Submit sends an utterance to the backend of the current mode.
//
// The user turn is appended before the backend is called. The returned
// error is non-nil only for empty input and malformed backend payloads;
// every other failure is rendered as analyst text.
func (c *Controller) Submit(ctx context.Context, utterance string) (Outcome, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return Outcome{}, ErrEmptyUtterance
	}

	c.mu.Lock()
	gen := c.gen
	c.state = AwaitingBackend
	c.mu.Unlock()
	defer c.setState(Idle)

	out := Outcome{User: session.UserTurn(uuid.NewString(), utterance, c.now())}
	c.store.Append(out.User)
	c.store.SetFlag(session.FlagLastError, "")

	if c.store.Mode() == session.ModeUnstructured {
		return c.submitDocuments(ctx, gen, out)
	}
	return c.submitStructured(ctx, gen, out)
}

func (c *Controller) submitStructured(ctx context.Context, gen uint64, out Outcome) (Outcome, error) {
	if c.gateway == nil {
		return c.finish(gen, out, c.analystTurn(session.Text{Body: NoticeNoAnalyst}))
	}

	var (
		resp analyst.Response
		err  error
	)
	c.typing(func() {
		resp, err = c.gateway.Ask(ctx, out.User.Content[0].(session.Text).Body)
	})
	if err != nil {
		applog.Error("analyst response: %v", err)
		c.store.SetFlag(session.FlagLastError, err.Error())
		return out, err
	}

	kept, dropped := interpret.Split(resp.Content)
	for _, f := range dropped {
		applog.Warn("dropped text fragment: %.80q", session.TextOf([]session.Fragment{f}, ""))
	}

	c.setState(Rendering)
	turn := c.analystTurn(kept...)
	turn.RequestID = resp.RequestID
	out, err = c.finish(gen, out, turn)
	if err != nil || out.Discarded {
		return out, err
	}

	for _, st := range turn.Statements() {
		out.Results = append(out.Results, c.run(ctx, st))
	}
	return out, nil
}

func (c *Controller) submitDocuments(ctx context.Context, gen uint64, out Outcome) (Outcome, error) {
	if c.multi == nil {
		return c.finish(gen, out, c.analystTurn(session.Text{Body: NoticeNoRetriever}))
	}

	var (
		answers []retrieval.Answer
		err     error
	)
	c.typing(func() {
		answers, err = c.multi.Ask(ctx, out.User.Content[0].(session.Text).Body)
	})
	if err != nil {
		applog.Error("document answer: %v", err)
		return c.finish(gen, out, c.analystTurn(session.Text{Body: "Error: " + err.Error()}))
	}

	c.setState(Rendering)
	out.Answers = answers
	turns := make([]session.Turn, 0, len(answers))
	for _, a := range answers {
		content := []session.Fragment{session.Text{Body: a.Text}}
		if len(a.Sources) > 0 {
			content = append(content, session.Text{Body: "Sources: " + a.SourceList("; ")})
		}
		t := c.analystTurn(content...)
		t.Model = a.Model
		turns = append(turns, t)
	}
	return c.finish(gen, out, turns...)
}

// typing raises the typing flag for the duration of fn.
func (c *Controller) typing(fn func()) {
	c.store.SetFlag(session.FlagTyping, true)
	defer c.store.SetFlag(session.FlagTyping, false)
	fn()
}

// finish appends turns unless the session was cleared since gen.
func (c *Controller) finish(gen uint64, out Outcome, turns ...session.Turn) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		applog.Info("session cleared during submit; dropping %d turn(s)", len(turns))
		out.Discarded = true
		return out, nil
	}
	for _, t := range turns {
		c.store.Append(t)
	}
	out.Analyst = turns
	return out, nil
}

func (c *Controller) analystTurn(content ...session.Fragment) session.Turn {
	return session.Turn{
		ID:        uuid.NewString(),
		Role:      session.RoleAnalyst,
		Content:   content,
		Timestamp: c.now(),
	}
}

// ClickSuggestion queues a suggestion for the next Drain.
func (c *Controller) ClickSuggestion(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrEmptyUtterance
	}
	return c.store.SetPending(s)
}

// Drain submits the pending suggestion, if any. It reports whether one
// was consumed.
func (c *Controller) Drain(ctx context.Context) (Outcome, bool, error) {
	p, ok := c.store.TakePending()
	if !ok {
		return Outcome{}, false, nil
	}
	out, err := c.Submit(ctx, p)
	return out, true, err
}

// Clear empties the session. A submit still waiting on its backend will
// not append its answer.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Idle
	c.store.Clear()
}

// Execute re-runs the SQL fragment at index fragment of turn number
// turn.
func (c *Controller) Execute(ctx context.Context, turn, fragment int) (Result, error) {
	t, ok := c.store.Turn(turn)
	if !ok {
		return Result{}, fmt.Errorf("%w: %d", ErrNoSuchTurn, turn)
	}
	for _, st := range t.Statements() {
		if st.Index == fragment {
			return c.run(ctx, st), nil
		}
	}
	return Result{}, fmt.Errorf("%w: turn %d fragment %d", ErrNotSQL, turn, fragment)
}

func (c *Controller) run(ctx context.Context, st session.IndexedSQL) Result {
	r := Result{Fragment: st.Index, Statement: st.SQL.Statement}
	if c.executor == nil {
		r.Err = ErrNoWarehouse
		return r
	}

	start := time.Now()
	t, err := c.executor.Execute(ctx, st.SQL.Statement)
	if err != nil {
		applog.Error("execute statement: %v", err)
		r.Err = err
		return r
	}
	applog.Event("SQL", "%d rows in %s", len(t.Rows), time.Since(start).Round(time.Millisecond))

	r.Table = t
	if spec, ok := chart.Default(t); ok {
		r.Suggested = &spec
	}
	return r
}
