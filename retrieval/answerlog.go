package retrieval

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// AnswerLog appends every multi-model question and its answers to a
// CSV file, one row per question.
type AnswerLog struct {
	mu     sync.Mutex
	path   string
	models []string
}

// NewAnswerLog returns a log at path with one column group per model.
func NewAnswerLog(path string, models []string) *AnswerLog {
	return &AnswerLog{path: path, models: models}
}

// Path returns the file the log writes to.
func (l *AnswerLog) Path() string { return l.path }

// Header returns the column names.
func (l *AnswerLog) Header() []string {
	h := []string{"Question"}
	for _, m := range l.models {
		h = append(h, m+" Answer", m+" Time", m+" Sources")
	}
	return h
}

// Append writes one row. The header is written when the file is new.
// Answers are matched to columns by model label; a missing model gets
// empty cells.
func (l *AnswerLog) Append(question string, answers []Answer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := os.Stat(l.path)
	fresh := errors.Is(err, fs.ErrNotExist)

	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open answer log: %w", err)
	}
	defer f.Close()

	byModel := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byModel[a.Model] = a
	}

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(l.Header()); err != nil {
			return err
		}
	}
	row := []string{question}
	for _, m := range l.models {
		a, ok := byModel[m]
		if !ok {
			row = append(row, "", "", "")
			continue
		}
		row = append(row, a.Text, a.Seconds(), a.SourceList("; "))
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
