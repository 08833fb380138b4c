// view_chat.go: Conversation view.
//
// Features:
//   - bubbles textinput for questions, `:` prefix for App commands
//   - async submit through chat.Controller with a spinner while the
//     analyst is typing
//   - analyst text rendered as markdown with glamour
//   - Tab cycles the suggestions of the last answer, Enter on an empty
//     prompt sends the highlighted one
//   - Ctrl+T switches between the data analyst and document Q&A
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/session"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type ChatView struct {
	ctl      *chat.Controller
	input    textinput.Model
	spinner  spinner.Model
	viewport *Viewport
	md       *glamour.TermRenderer
	rendered map[string]string // markdown cache keyed by turn ID and fragment
	loading  bool
	selected int // highlighted suggestion of the last turn, -1 for none
	width    int
	height   int
}

func NewChatView(ctl *chat.Controller) *ChatView {
	ti := textinput.New()
	ti.Prompt = "Ask> "
	ti.PromptStyle = StylePrompt
	ti.Placeholder = "Ask a question about your data..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StylePrompt

	return &ChatView{
		ctl:      ctl,
		input:    ti,
		spinner:  sp,
		viewport: NewViewport(80, 20),
		rendered: make(map[string]string),
		selected: -1,
	}
}

func (v *ChatView) Name() string         { return "Chat" }
func (v *ChatView) WantsTextInput() bool { return true }

func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = width - 8
	v.viewport.SetSize(width-2, height-4)

	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	if r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(wrap)); err == nil {
		v.md = r
		v.rendered = make(map[string]string)
	}
	v.refresh()
}

func (v *ChatView) ShortHelp() []KeyBinding {
	return []KeyBinding{
		{Key: "Enter", Desc: "send"},
		{Key: "Tab", Desc: "suggestion"},
		{Key: "Ctrl+T", Desc: "mode"},
		{Key: "Ctrl+L", Desc: "clear"},
		{Key: "PgUp/PgDn", Desc: "scroll"},
	}
}

func (v *ChatView) Init() tea.Cmd {
	v.refresh()
	return textinput.Blink
}

func (v *ChatView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd

	case SubmitResultMsg:
		v.loading = false
		v.selected = -1
		v.refresh()
		v.viewport.End()

		var cmds []tea.Cmd
		if msg.Err != nil {
			cmds = append(cmds, status("error: "+msg.Err.Error()))
		}
		if len(msg.Outcome.Results) > 0 && len(msg.Outcome.Analyst) > 0 {
			turn := v.turnIndex(msg.Outcome.Analyst[0].ID)
			results := msg.Outcome.Results
			cmds = append(cmds, func() tea.Msg { return ResultsMsg{Turn: turn, Results: results} })
		}
		if v.ctl.Store().Pending() != "" {
			cmds = append(cmds, v.drain())
		}
		return v, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *ChatView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if v.loading {
			return v, nil
		}
		text := strings.TrimSpace(v.input.Value())
		if strings.HasPrefix(text, ":") {
			v.input.Reset()
			return v, func() tea.Msg { return CommandMsg(strings.TrimPrefix(text, ":")) }
		}
		if text == "" {
			if s := v.suggestions(); v.selected >= 0 && v.selected < len(s) {
				return v, v.click(s[v.selected])
			}
			return v, nil
		}
		v.input.Reset()
		return v, v.submit(text)

	case "tab":
		if s := v.suggestions(); len(s) > 0 {
			v.selected = (v.selected + 1) % len(s)
			v.refresh()
		}
		return v, nil

	case "ctrl+t":
		mode := session.ModeUnstructured
		if v.ctl.Store().Mode() == session.ModeUnstructured {
			mode = session.ModeStructured
		}
		v.ctl.SetMode(mode)
		v.refresh()
		return v, status("mode: " + modeLabel(mode))

	case "ctrl+l":
		v.Clear()
		return v, nil

	case "pgup":
		v.viewport.PageUp()
		return v, nil
	case "pgdown":
		v.viewport.PageDown()
		return v, nil
	case "ctrl+k":
		v.viewport.ScrollUp(1)
		return v, nil
	case "ctrl+j":
		v.viewport.ScrollDown(1)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// Clear empties the conversation.
func (v *ChatView) Clear() {
	v.ctl.Clear()
	v.selected = -1
	v.rendered = make(map[string]string)
	v.refresh()
}

func (v *ChatView) submit(text string) tea.Cmd {
	v.loading = true
	v.refresh()
	v.viewport.End()

	ctl := v.ctl
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		out, err := ctl.Submit(context.Background(), text)
		return SubmitResultMsg{Outcome: out, Err: err}
	})
}

func (v *ChatView) click(suggestion string) tea.Cmd {
	if err := v.ctl.ClickSuggestion(suggestion); err != nil {
		return status(err.Error())
	}
	return v.drain()
}

// drain submits the pending suggestion, at most one per cycle.
func (v *ChatView) drain() tea.Cmd {
	v.loading = true
	ctl := v.ctl
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		out, _, err := ctl.Drain(context.Background())
		return SubmitResultMsg{Outcome: out, Err: err}
	})
}

// suggestions returns the options of the last turn, if it has any.
func (v *ChatView) suggestions() []string {
	n := v.ctl.Store().Len()
	t, ok := v.ctl.Store().Turn(n - 1)
	if !ok || t.Role != session.RoleAnalyst {
		return nil
	}
	var out []string
	for _, f := range t.Content {
		if s, ok := f.(session.Suggestions); ok {
			out = append(out, s.Options...)
		}
	}
	return out
}

func (v *ChatView) turnIndex(id string) int {
	for i, t := range v.ctl.Store().All() {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (v *ChatView) refresh() {
	follow := v.viewport.AtEnd()
	v.viewport.SetContentLines(v.renderLines())
	if follow {
		v.viewport.End()
	}
}

func (v *ChatView) renderLines() []string {
	store := v.ctl.Store()
	state := store.State()
	turns := store.All()

	if len(turns) == 0 && !v.loading {
		return v.welcome(state.ChatMode)
	}

	var lines []string
	suggestion := 0
	for i, t := range turns {
		last := i == len(turns)-1
		if t.Role == session.RoleUser {
			lines = append(lines, StyleUser.Render("You: ")+session.TextOf(t.Content, " "), "")
			continue
		}

		head := StyleAnalyst.Render("Analyst")
		if t.Model != "" {
			head = StyleModel.Render(t.Model)
		}
		if state.ShowDebug && t.RequestID != "" {
			head += StyleDimmed.Render("  request " + t.RequestID)
		}
		lines = append(lines, head)

		for j, f := range t.Content {
			switch f := f.(type) {
			case session.Text:
				lines = append(lines, v.markdown(fmt.Sprintf("%s/%d", t.ID, j), f.Body)...)
			case session.Suggestions:
				lines = append(lines, StyleDimmed.Render("  Suggestions:"))
				for _, o := range f.Options {
					style := StyleSuggestion
					if last && suggestion == v.selected {
						style = StyleSuggestionActive
					}
					if last {
						suggestion++
					}
					lines = append(lines, "    "+style.Render("› "+o))
				}
			case session.SQL:
				if state.AutoExpandSQL {
					for _, l := range strings.Split(f.Statement, "\n") {
						lines = append(lines, StyleSQL.Render(l))
					}
				} else {
					lines = append(lines, StyleSQL.Render("▸ SQL query (F2 for results)"))
				}
			}
		}
		lines = append(lines, "")
	}

	if state.Typing || v.loading {
		lines = append(lines, "  "+v.spinner.View()+StyleDimmed.Render(" analyst is typing..."))
	}
	if state.LastError != "" {
		lines = append(lines, StyleError.Render("  "+state.LastError))
	}
	return lines
}

func (v *ChatView) markdown(key, body string) []string {
	out, ok := v.rendered[key]
	if !ok {
		out = body
		if v.md != nil {
			if r, err := v.md.Render(body); err == nil {
				out = strings.Trim(r, "\n")
			}
		}
		v.rendered[key] = out
	}
	return strings.Split(out, "\n")
}

func (v *ChatView) welcome(mode session.Mode) []string {
	lines := []string{
		StyleTitle.Render("📊 paiAnalyst") + StyleDimmed.Render(" ("+modeLabel(mode)+")"),
		"",
	}
	if mode == session.ModeUnstructured {
		lines = append(lines, "Ask questions about your indexed documents. Every configured model answers.")
	} else {
		lines = append(lines, "Ask questions about your data in plain language.")
	}
	lines = append(lines, "", StyleBold.Render("Sample questions"))
	for _, q := range chat.Samples(mode) {
		lines = append(lines, "  • "+q)
	}
	lines = append(lines, "",
		StyleDimmed.Render("Type a question and press Enter. Ctrl+T switches mode."))
	return lines
}

func (v *ChatView) View() string {
	mode := StyleTabActive.Render(modeLabel(v.ctl.Store().Mode()))
	prompt := v.input.View()
	if v.loading {
		prompt = StylePrompt.Render("Ask> ") + StyleDimmed.Render("waiting for response...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, mode, v.viewport.Render(), prompt)
}

func modeLabel(m session.Mode) string {
	if m == session.ModeUnstructured {
		return "Document Q&A"
	}
	return "Data Analyst"
}

func status(s string) tea.Cmd {
	return func() tea.Msg { return StatusMsg(s) }
}
