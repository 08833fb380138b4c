package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SemanticModel is the subset of the analyst's semantic model file that
// we validate and list. The raw YAML is what the model reads.
type SemanticModel struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tables      []struct {
		Name      string `yaml:"name"`
		BaseTable struct {
			Database string `yaml:"database"`
			Schema   string `yaml:"schema"`
			Table    string `yaml:"table"`
		} `yaml:"base_table"`
		Dimensions     []ModelField `yaml:"dimensions"`
		TimeDimensions []ModelField `yaml:"time_dimensions"`
		Measures       []ModelField `yaml:"measures"`
		Facts          []ModelField `yaml:"facts"`
	} `yaml:"tables"`
	Relationships []struct {
		Name       string `yaml:"name"`
		LeftTable  string `yaml:"left_table"`
		RightTable string `yaml:"right_table"`
	} `yaml:"relationships"`

	raw string
}

// ModelField is a dimension, measure or fact of a logical table.
type ModelField struct {
	Name     string   `yaml:"name"`
	Expr     string   `yaml:"expr"`
	DataType string   `yaml:"data_type"`
	Synonyms []string `yaml:"synonyms"`
}

// Raw returns the file contents.
func (m *SemanticModel) Raw() string { return m.raw }

// TableNames lists the logical table names.
func (m *SemanticModel) TableNames() []string {
	out := make([]string, 0, len(m.Tables))
	for _, t := range m.Tables {
		out = append(out, t.Name)
	}
	return out
}

// LoadSemanticModel reads and validates a semantic model YAML file.
func LoadSemanticModel(path string) (*SemanticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read semantic model: %w", err)
	}
	return ParseSemanticModel(data)
}

// ParseSemanticModel validates semantic model YAML.
func ParseSemanticModel(data []byte) (*SemanticModel, error) {
	var m SemanticModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse semantic model: %w", err)
	}
	if len(m.Tables) == 0 {
		return nil, errors.New("parse semantic model: no tables defined")
	}
	m.raw = string(data)
	return &m, nil
}

// PromptEnhancer rewrites a question so the analyst service can map it
// onto the semantic model more reliably.
type PromptEnhancer struct {
	provider  Provider
	modelPath string
}

// NewPromptEnhancer returns an enhancer. A nil provider or empty model
// path makes every call return ErrNotConfigured.
func NewPromptEnhancer(p Provider, semanticModelPath string) *PromptEnhancer {
	return &PromptEnhancer{provider: p, modelPath: semanticModelPath}
}

// Enhance returns the rephrased question. Callers fall back to the
// original question on any error.
func (e *PromptEnhancer) Enhance(ctx context.Context, question string) (string, error) {
	if e == nil || e.provider == nil || e.modelPath == "" {
		return "", ErrNotConfigured
	}
	model, err := LoadSemanticModel(e.modelPath)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(enhancePrompt, fmt.Sprintf(enhancePromptContext, model.Raw()), question)
	LogAIRequest("Enhance", e.provider.Name(), map[string]string{
		"User Question": question,
		"Tables":        strings.Join(model.TableNames(), ", "),
	})
	out, err := e.provider.Chat(ctx, []Message{{Role: "user", Content: prompt}})
	LogAIResponse("Enhance", out, err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
