package ai

import (
	"context"
	"fmt"

	"github.com/DachengChen/paiAnalyst/table"
)

// Summary texts shown in place of a model answer.
const (
	SummaryNoData        = "No data available for summary."
	SummaryNotConfigured = "Summarization is not configured."
)

// summaryRows caps the rows sent to the model.
const summaryRows = 200

// Summarizer describes a result table in prose.
type Summarizer struct {
	provider Provider
}

// NewSummarizer returns a summarizer. p may be nil.
func NewSummarizer(p Provider) *Summarizer {
	return &Summarizer{provider: p}
}

// Summarize never fails: problems are reported in the returned text.
func (s *Summarizer) Summarize(ctx context.Context, question string, t *table.Table) string {
	if t == nil || len(t.Rows) == 0 {
		return SummaryNoData
	}
	if s == nil || s.provider == nil {
		return SummaryNotConfigured
	}
	if question == "" {
		question = "Analyze this data"
	}

	prompt := fmt.Sprintf(summaryPrompt, question, t.Markdown(summaryRows))
	LogAIRequest("Summarize", s.provider.Name(), map[string]string{
		"User Question": question,
		"Rows":          table.FormatCount(len(t.Rows)),
	})
	out, err := s.provider.Chat(ctx, []Message{{Role: "user", Content: prompt}})
	LogAIResponse("Summarize", out, err)
	if err != nil {
		return fmt.Sprintf("Failed to summarize: %v", err)
	}
	return out
}
