// view_result.go: Results of the SQL in the last answer.
//
// Three panes over the selected result, cycled with v:
//   - Data: row/column metrics and a scrollable grid
//   - Chart: selectors seeded by the chart advisor and a terminal
//     preview of the Vega-Lite chart
//   - Summary: an LLM summary of the rows, rendered as markdown
//
// Exports (CSV, XLSX, chart JSON) are written to the export directory.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DachengChen/paiAnalyst/ai"
	"github.com/DachengChen/paiAnalyst/chart"
	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/session"
	"github.com/DachengChen/paiAnalyst/table"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const gridRows = 500

type resultPane int

const (
	paneData resultPane = iota
	paneChart
	paneSummary
)

func (p resultPane) String() string {
	switch p {
	case paneChart:
		return "Chart"
	case paneSummary:
		return "Summary"
	}
	return "Data"
}

type ResultView struct {
	ctl        *chat.Controller
	summarizer *ai.Summarizer
	exportDir  string
	viewport   *Viewport
	md         *glamour.TermRenderer

	turn      int
	results   []chat.Result
	idx       int
	spec      chart.Spec
	pane      resultPane
	summaries map[string]string
	busy      bool

	width  int
	height int
}

func NewResultView(ctl *chat.Controller, summarizer *ai.Summarizer, exportDir string) *ResultView {
	return &ResultView{
		ctl:        ctl,
		summarizer: summarizer,
		exportDir:  exportDir,
		viewport:   NewViewport(80, 20),
		summaries:  make(map[string]string),
	}
}

func (v *ResultView) Name() string         { return "Result" }
func (v *ResultView) WantsTextInput() bool { return false }

func (v *ResultView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.SetSize(width-2, height-4)
	if r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width-6)); err == nil {
		v.md = r
	}
	v.refresh()
}

func (v *ResultView) ShortHelp() []KeyBinding {
	help := []KeyBinding{
		{Key: "v", Desc: "pane"},
		{Key: "[ ]", Desc: "result"},
	}
	switch v.pane {
	case paneChart:
		help = append(help,
			KeyBinding{Key: "f/x/y/o/s", Desc: "family/x/y/color/sort"},
			KeyBinding{Key: "a", Desc: "advise"},
			KeyBinding{Key: "J", Desc: "save chart"})
	case paneSummary:
		help = append(help, KeyBinding{Key: "m", Desc: "summarize"})
	default:
		help = append(help,
			KeyBinding{Key: "e/E", Desc: "csv/xlsx"},
			KeyBinding{Key: "c", Desc: "copy SQL"})
	}
	return help
}

func (v *ResultView) Init() tea.Cmd {
	v.refresh()
	return nil
}

// SetResults replaces the results shown, keeping the first one that
// produced a table selected.
func (v *ResultView) SetResults(turn int, results []chat.Result) {
	v.turn = turn
	v.results = results
	v.idx = 0
	for i, r := range results {
		if r.Table != nil {
			v.idx = i
			break
		}
	}
	v.resetSpec()
	v.viewport.Home()
	v.refresh()
}

// Reset forgets every result, e.g. after the conversation is cleared.
func (v *ResultView) Reset() {
	v.SetResults(0, nil)
	v.summaries = make(map[string]string)
}

func (v *ResultView) current() (chat.Result, bool) {
	if v.idx < 0 || v.idx >= len(v.results) {
		return chat.Result{}, false
	}
	return v.results[v.idx], true
}

func (v *ResultView) currentTable() *table.Table {
	r, ok := v.current()
	if !ok {
		return nil
	}
	return r.Table
}

func (v *ResultView) resetSpec() {
	v.spec = chart.Spec{}
	r, ok := v.current()
	if !ok {
		return
	}
	if r.Suggested != nil {
		v.spec = *r.Suggested
	} else if r.Table != nil {
		v.spec, _ = chart.Default(r.Table)
	}
}

func (v *ResultView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case ResultsMsg:
		v.SetResults(msg.Turn, msg.Results)
		return v, nil

	case SummaryMsg:
		v.busy = false
		v.summaries[msg.Statement] = msg.Text
		v.refresh()
		return v, nil

	case ExportedMsg:
		v.busy = false
		if msg.Err != nil {
			return v, status("export failed: " + msg.Err.Error())
		}
		return v, status("saved " + msg.Path)
	}
	return v, nil
}

func (v *ResultView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	t := v.currentTable()

	switch msg.String() {
	case "v":
		v.pane = (v.pane + 1) % 3
		v.viewport.Home()
	case "[":
		if v.idx > 0 {
			v.idx--
			v.resetSpec()
		}
	case "]":
		if v.idx < len(v.results)-1 {
			v.idx++
			v.resetSpec()
		}

	case "f":
		v.spec.Family = next(chart.Families(), v.spec.Family)
	case "x":
		if t != nil {
			v.spec.X = next(t.Names(), v.spec.X)
			if ys := chart.YOptions(t, v.spec.X); len(ys) > 0 && !contains(ys, v.spec.Y) {
				v.spec.Y = ys[0]
			}
			v.spec.Color = ""
		}
	case "y":
		if t != nil {
			v.spec.Y = next(chart.YOptions(t, v.spec.X), v.spec.Y)
			v.spec.Color = ""
		}
	case "o":
		if t != nil {
			v.spec.Color = next(chart.ColorOptions(t, v.spec.X, v.spec.Y), v.spec.Color)
		}
	case "s":
		v.spec.Sort = next(chart.SortRules(), v.spec.Sort)
	case "a":
		if t != nil {
			v.spec.Family = chart.Suggest(t, v.spec.X, v.spec.Y)
		}

	case "e":
		return v, v.export("csv")
	case "E":
		return v, v.export("xlsx")
	case "J":
		return v, v.exportChart()
	case "c":
		if r, ok := v.current(); ok {
			if err := clipboard.WriteAll(r.Statement); err != nil {
				return v, status("copy failed: " + err.Error())
			}
			return v, status("SQL copied to clipboard")
		}
	case "m":
		v.pane = paneSummary
		cmd := v.summarize()
		v.refresh()
		return v, cmd

	case "j", "down":
		v.viewport.ScrollDown(1)
		return v, nil
	case "k", "up":
		v.viewport.ScrollUp(1)
		return v, nil
	case "h", "left":
		v.viewport.ScrollLeft(4)
		return v, nil
	case "l", "right":
		v.viewport.ScrollRight(4)
		return v, nil
	case "pgup":
		v.viewport.PageUp()
		return v, nil
	case "pgdown":
		v.viewport.PageDown()
		return v, nil
	case "w":
		v.viewport.ToggleWrap()
		return v, nil
	default:
		return v, nil
	}
	v.refresh()
	return v, nil
}

func (v *ResultView) summarize() tea.Cmd {
	r, ok := v.current()
	if !ok || v.busy {
		return nil
	}
	question := ""
	if prev, ok := v.ctl.Store().Turn(v.turn - 1); ok && prev.Role == session.RoleUser {
		question = session.TextOf(prev.Content, " ")
	}
	v.busy = true
	s := v.summarizer
	return func() tea.Msg {
		return SummaryMsg{Statement: r.Statement, Text: s.Summarize(context.Background(), question, r.Table)}
	}
}

func (v *ResultView) export(format string) tea.Cmd {
	t := v.currentTable()
	if t == nil {
		return status("no table to export")
	}
	path := filepath.Join(v.exportDir, table.ExportName(time.Now(), format))
	return func() tea.Msg {
		var (
			data []byte
			err  error
		)
		if format == "xlsx" {
			data, err = t.XLSX()
		} else {
			data, err = t.CSV()
		}
		if err == nil {
			err = os.WriteFile(path, data, 0644)
		}
		return ExportedMsg{Path: path, Err: err}
	}
}

func (v *ResultView) exportChart() tea.Cmd {
	t := v.currentTable()
	if t == nil {
		return status("no table to chart")
	}
	art, err := chart.Render(t, v.spec)
	if err != nil {
		return status(err.Error())
	}
	path := filepath.Join(v.exportDir, "chart_"+time.Now().Format("20060102_150405")+".vl.json")
	return func() tea.Msg {
		data, err := art.JSON()
		if err == nil {
			err = os.WriteFile(path, data, 0644)
		}
		return ExportedMsg{Path: path, Err: err}
	}
}

func (v *ResultView) refresh() {
	v.viewport.SetContentLines(v.renderLines())
}

func (v *ResultView) renderLines() []string {
	r, ok := v.current()
	if !ok {
		return []string{
			StyleTitle.Render("📈 Results"),
			StyleDimmed.Render("Ask the data analyst a question; results of its SQL show up here."),
		}
	}

	lines := []string{fmt.Sprintf("%s %s  %s",
		StyleTitle.Render(fmt.Sprintf("📈 Result %d/%d", v.idx+1, len(v.results))),
		StyleTabActive.Render(v.pane.String()),
		StyleDimmed.Render(oneLine(r.Statement, v.width-30)))}

	if r.Err != nil {
		return append(lines, "", StyleError.Render("ERROR: "+r.Err.Error()))
	}
	t := r.Table

	switch v.pane {
	case paneChart:
		lines = append(lines, v.selectorLine(), "")
		art, err := chart.Render(t, v.spec)
		if err != nil {
			var dv *chart.DataValidationError
			if errors.As(err, &dv) {
				lines = append(lines, StyleError.Render(dv.Reason))
				if dv.Guidance != "" {
					lines = append(lines, StyleWarning.Render(dv.Guidance))
				}
				return lines
			}
			return append(lines, StyleError.Render(err.Error()))
		}
		return append(lines, renderPreview(t, v.spec, art, v.width)...)

	case paneSummary:
		text, ok := v.summaries[r.Statement]
		switch {
		case v.busy && !ok:
			return append(lines, "", StyleDimmed.Render("⏳ Summarizing..."))
		case !ok:
			return append(lines, "", StyleDimmed.Render("Press m to summarize this result."))
		}
		if v.md != nil {
			if out, err := v.md.Render(text); err == nil {
				text = strings.Trim(out, "\n")
			}
		}
		return append(lines, append([]string{""}, strings.Split(text, "\n")...)...)
	}

	m := t.Metrics()
	lines = append(lines, StyleBold.Render("Rows: ")+m.Rows+"   "+StyleBold.Render("Columns: ")+m.Columns, "")
	return append(lines, renderGrid(t, gridRows)...)
}

func (v *ResultView) selectorLine() string {
	color := v.spec.Color
	if color == "" {
		color = "none"
	}
	family := "?"
	if v.spec.Family != "" {
		family = v.spec.Family.Label()
	}
	return fmt.Sprintf("%s %s   %s %s   %s %s   %s %s   %s %s",
		StyleHelpKey.Render("f"), family,
		StyleHelpKey.Render("x"), v.spec.X,
		StyleHelpKey.Render("y"), v.spec.Y,
		StyleHelpKey.Render("o"), color,
		StyleHelpKey.Render("s"), v.spec.Sort.Label())
}

func (v *ResultView) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, v.viewport.Render())
}

// next returns the element after cur in opts, wrapping around.
func next[T comparable](opts []T, cur T) T {
	if len(opts) == 0 {
		return cur
	}
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func contains(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}

func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if width > 3 && len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s
}
