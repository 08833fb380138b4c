package ai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiAnalyst/table"
)

// stub is a Provider with a canned answer.
type stub struct {
	reply string
	err   error
	seen  []Message
}

func (s *stub) Name() string { return "stub" }

func (s *stub) Chat(_ context.Context, m []Message) (string, error) {
	s.seen = m
	return s.reply, s.err
}

const modelYAML = `name: deals
tables:
  - name: DEALS
    base_table: {database: DB, schema: S, table: DEALS}
    dimensions:
      - name: COMPANY
        expr: company
        data_type: TEXT
    measures:
      - name: DEAL_VALUE
        expr: value
        data_type: NUMBER
relationships:
  - name: deals_to_regions
    left_table: DEALS
    right_table: REGIONS
`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseSemanticModel(t *testing.T) {
	m, err := ParseSemanticModel([]byte(modelYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"DEALS"}, m.TableNames())
	assert.Equal(t, "DEAL_VALUE", m.Tables[0].Measures[0].Name)

	_, err = ParseSemanticModel([]byte("name: empty\n"))
	assert.Error(t, err)
	_, err = ParseSemanticModel([]byte("tables: [\n"))
	assert.Error(t, err)
}

func TestEnhance(t *testing.T) {
	p := &stub{reply: "  Show DEALS.COMPANY ranked by count of deals, top 5  "}
	e := NewPromptEnhancer(p, writeModel(t, modelYAML))

	out, err := e.Enhance(context.Background(), "top 5 companies")
	require.NoError(t, err)
	assert.Equal(t, "Show DEALS.COMPANY ranked by count of deals, top 5", out)

	require.Len(t, p.seen, 1)
	prompt := p.seen[0].Content
	assert.Contains(t, prompt, "base_table: {database: DB")
	assert.True(t, strings.HasSuffix(prompt, "User Question: top 5 companies\nRephrased Question:"))
}

func TestEnhanceNotConfigured(t *testing.T) {
	_, err := NewPromptEnhancer(nil, "x.yaml").Enhance(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewPromptEnhancer(&stub{}, filepath.Join(t.TempDir(), "missing.yaml")).Enhance(context.Background(), "q")
	assert.ErrorContains(t, err, "read semantic model")
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	tbl := table.New([]string{"company", "deals"}, [][]any{{"Acme", 3}})

	assert.Equal(t, SummaryNoData, NewSummarizer(&stub{}).Summarize(ctx, "q", table.New([]string{"a"}, nil)))
	assert.Equal(t, SummaryNotConfigured, NewSummarizer(nil).Summarize(ctx, "q", tbl))

	failing := &stub{err: errors.New("quota exceeded")}
	assert.Equal(t, "Failed to summarize: quota exceeded", NewSummarizer(failing).Summarize(ctx, "q", tbl))

	ok := &stub{reply: "Acme leads with 3 deals."}
	assert.Equal(t, "Acme leads with 3 deals.", NewSummarizer(ok).Summarize(ctx, "", tbl))
	assert.Contains(t, ok.seen[0].Content, "A customer asked: Analyze this data")
	assert.Contains(t, ok.seen[0].Content, "| Acme | 3 |")
}
