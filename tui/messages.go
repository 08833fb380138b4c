// messages.go defines Bubble Tea messages used for async communication.
//
// Backend calls, SQL execution, summaries and file exports all run in
// tea.Cmd goroutines and report back through these types, so the UI
// never blocks.
package tui

import (
	"github.com/DachengChen/paiAnalyst/chat"
)

// SubmitResultMsg is sent when a submitted utterance (typed or a
// drained suggestion) has been answered.
type SubmitResultMsg struct {
	Outcome chat.Outcome
	Err     error
}

// ResultsMsg hands executed SQL results to the Result view.
type ResultsMsg struct {
	Turn    int
	Results []chat.Result
}

// SummaryMsg is sent when a result summary completes.
type SummaryMsg struct {
	Statement string
	Text      string
}

// LogMsg carries the current tail of the application log.
type LogMsg struct {
	Lines []string
	Err   error
}

// ExportedMsg is sent when a file export finishes.
type ExportedMsg struct {
	Path string
	Err  error
}

// CommandMsg asks the App to run a `:` command typed in a text view.
type CommandMsg string

// StatusMsg is a transient status message for the status bar.
type StatusMsg string
