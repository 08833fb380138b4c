// logger.go provides file-based logging for ALL AI interactions.
//
// Logs are written to ~/.paianalyst/logs/ai.log with timestamps.
// Covers: prompt enhancement, summaries, retrieval answers.
package ai

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	logOnce sync.Once
	logMu   sync.Mutex
	logOut  io.Writer
)

// initLog opens (or creates) the log file. Called once lazily.
func initLog() {
	logOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return
		}
		logDir := filepath.Join(homeDir, ".paianalyst", "logs")
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return
		}
		f, err := os.OpenFile(filepath.Join(logDir, "ai.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return
		}
		logMu.Lock()
		if logOut == nil {
			logOut = f
		} else {
			f.Close()
		}
		logMu.Unlock()
	})
}

// SetLogOutput redirects the AI log. Passing nil silences it.
func SetLogOutput(w io.Writer) {
	logOnce.Do(func() {})
	logMu.Lock()
	defer logMu.Unlock()
	logOut = w
}

func logWrite(s string) {
	initLog()
	logMu.Lock()
	defer logMu.Unlock()
	if logOut != nil {
		io.WriteString(logOut, s) //nolint:errcheck
	}
}

// LogAIRequest logs any AI request with the given operation name and input details.
func LogAIRequest(operation string, provider string, details map[string]string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	var sb strings.Builder
	fmt.Fprintf(&sb,
		"\n════════════════════════════════════════════════════════════════\n"+
			"[REQUEST] %s  |  Op: %s  |  Provider: %s\n"+
			"════════════════════════════════════════════════════════════════\n",
		ts, operation, provider,
	)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s:\n%s\n────────────────────────────────────────\n", k, details[k])
	}
	logWrite(sb.String())
}

// LogAIResponse logs any AI response with the given operation name.
func LogAIResponse(operation string, response string, err error) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	errStr := "(none)"
	if err != nil {
		errStr = err.Error()
	}
	logWrite(fmt.Sprintf(
		"[RESPONSE] %s  |  Op: %s\n"+
			"────────────────────────────────────────\n"+
			"Error: %s\n"+
			"────────────────────────────────────────\n"+
			"Response:\n%s\n"+
			"════════════════════════════════════════════════════════════════\n\n",
		ts, operation, errStr, response,
	))
}
