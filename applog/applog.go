// Package applog provides general-purpose application logging.
//
// Logs are written to ~/.paianalyst/logs/app.log with timestamps.
// Covers: app start/stop, config loading, gateway failures, dropped
// fragments, HTTP requests and general events.
package applog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	once sync.Once
	mu   sync.Mutex
	out  io.Writer
	path string
)

func init() {
	once.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return
		}
		logDir := filepath.Join(homeDir, ".paianalyst", "logs")
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return
		}
		logPath := filepath.Join(logDir, "app.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return
		}
		out = f
		path = logPath
	})
}

// Path returns the log file location, or "" when logging goes elsewhere.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return path
}

// SetOutput redirects log lines to w. Passing nil silences logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if c, ok := out.(io.Closer); ok && out != w {
		c.Close()
	}
	out = w
	path = ""
}

func write(s string) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		io.WriteString(out, s) //nolint:errcheck
	}
}

func stamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// Info logs a general info message.
func Info(format string, args ...interface{}) {
	write(fmt.Sprintf("[%s] INFO  %s\n", stamp(), fmt.Sprintf(format, args...)))
}

// Warn logs a degraded-but-recovered condition.
func Warn(format string, args ...interface{}) {
	write(fmt.Sprintf("[%s] WARN  %s\n", stamp(), fmt.Sprintf(format, args...)))
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	write(fmt.Sprintf("[%s] ERROR %s\n", stamp(), fmt.Sprintf(format, args...)))
}

// Event logs a structured event with a category.
func Event(category string, format string, args ...interface{}) {
	write(fmt.Sprintf("[%s] %-12s %s\n", stamp(), category, fmt.Sprintf(format, args...)))
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if c, ok := out.(io.Closer); ok {
		c.Close()
	}
	out = nil
}
