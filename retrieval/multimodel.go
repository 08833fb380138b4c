package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DachengChen/paiAnalyst/ai"
	"github.com/DachengChen/paiAnalyst/applog"
)

// DefaultTopK is how many chunks are retrieved per question.
const DefaultTopK = 4

// Retriever finds the chunks relevant to a question.
type Retriever interface {
	Search(ctx context.Context, q string, k int) ([]Hit, error)
}

// Answer is one model's reply to a question.
type Answer struct {
	Model   string        `json:"model"`
	Text    string        `json:"text"`
	Elapsed time.Duration `json:"elapsed"`
	Sources []Hit         `json:"sources"`
	Err     error         `json:"-"`
}

// Seconds is the elapsed time as shown to the user.
func (a Answer) Seconds() string {
	return strconv.FormatFloat(a.Elapsed.Seconds(), 'f', 2, 64)
}

// SourceList joins the citations of the answer.
func (a Answer) SourceList(sep string) string {
	names := make([]string, len(a.Sources))
	for i, h := range a.Sources {
		names[i] = h.Display()
	}
	return strings.Join(names, sep)
}

// MultiModel asks every configured model the same question over one
// shared retrieval.
type MultiModel struct {
	retriever Retriever
	models    []ai.Named
	topK      int
	log       *AnswerLog
}

// NewMultiModel wires a retriever to models. log may be nil.
func NewMultiModel(r Retriever, models []ai.Named, topK int, log *AnswerLog) *MultiModel {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &MultiModel{retriever: r, models: models, topK: topK, log: log}
}

// Models returns the labels answers are filed under, in order.
func (m *MultiModel) Models() []string {
	out := make([]string, len(m.models))
	for i, n := range m.models {
		out[i] = n.Label
	}
	return out
}

// Ask retrieves context once and queries all models concurrently.
// Answers come back in model order. One model failing only marks its
// own answer; the error return is reserved for retrieval failures.
func (m *MultiModel) Ask(ctx context.Context, q string) ([]Answer, error) {
	hits, err := m.retriever.Search(ctx, q, m.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	prompt := fmt.Sprintf(ai.RetrievalPrompt, joinContext(hits), q)

	answers := make([]Answer, len(m.models))
	var g errgroup.Group
	for i, n := range m.models {
		g.Go(func() error {
			answers[i] = m.askOne(ctx, n, prompt, hits)
			return nil
		})
	}
	_ = g.Wait()

	if m.log != nil {
		if err := m.log.Append(q, answers); err != nil {
			applog.Error("append answer log: %v", err)
		}
	}
	return answers, nil
}

func (m *MultiModel) askOne(ctx context.Context, n ai.Named, prompt string, hits []Hit) Answer {
	ai.LogAIRequest("RetrievalQA", n.Label, map[string]string{
		"prompt":  prompt,
		"sources": strconv.Itoa(len(hits)),
	})

	start := time.Now()
	text, err := n.Provider.Chat(ctx, []ai.Message{{Role: "user", Content: prompt}})
	elapsed := time.Since(start)
	ai.LogAIResponse("RetrievalQA", text, err)

	a := Answer{Model: n.Label, Text: strings.TrimSpace(text), Elapsed: elapsed, Sources: hits}
	if err != nil {
		a.Err = err
		a.Text = "Error: " + err.Error()
		applog.Warn("%s failed after %s: %v", n.Label, a.Seconds(), err)
	}
	return a
}

func joinContext(hits []Hit) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Content
	}
	return strings.Join(parts, "\n\n")
}
