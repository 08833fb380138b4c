// app.go is the top-level Bubble Tea model that orchestrates all views.
//
// Key design decisions:
//   - Tab-based navigation between Chat, Result and Log (F1-F3, Tab)
//   - Command mode (`:`) for session commands; the chat prompt
//     accepts the same commands with a leading `:`
//   - Jump mode (`/`) for quick view switching
//   - Help overlay (`?`) toggled on/off
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DachengChen/paiAnalyst/ai"
	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/session"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const appVersion = "0.2.0"

// Tab indices.
const (
	TabChat = iota
	TabResult
	TabLog
)

// InputMode determines what keystrokes do.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeCommand
	ModeJump
)

// Options wires the App to the rest of the program.
type Options struct {
	Controller *chat.Controller
	Summarizer *ai.Summarizer // nil when summaries are not configured
	Warehouse  string         // shown in the header
	ExportDir  string
	LogPath    string
}

// App is the root Bubble Tea model.
type App struct {
	ctl       *chat.Controller
	warehouse string
	exportDir string

	views     []View
	chat      *ChatView
	result    *ResultView
	activeTab int

	width     int
	height    int
	mode      InputMode
	cmdInput  string
	showHelp  bool
	statusMsg string
}

// NewApp builds the App and its views.
func NewApp(opts Options) *App {
	ctl := opts.Controller
	if ctl == nil {
		ctl = chat.New(nil, nil, nil, nil)
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	a := &App{
		ctl:       ctl,
		warehouse: opts.Warehouse,
		exportDir: opts.ExportDir,
		chat:      NewChatView(ctl),
		result:    NewResultView(ctl, opts.Summarizer, opts.ExportDir),
	}
	a.views = []View{a.chat, a.result, NewLogView(opts.LogPath)}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, v := range a.views {
		cmds = append(cmds, v.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// header(1) + status(1) + borders(2) + slack(1)
		contentW := a.width - 2
		viewH := a.height - 5
		for _, v := range a.views {
			v.SetSize(contentW, viewH)
		}
		return a, nil

	case tea.KeyMsg:
		a.statusMsg = ""
		return a.handleKey(msg)

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case CommandMsg:
		return a, a.executeCommand(string(msg))

	case SubmitResultMsg, spinner.TickMsg:
		return a, a.forward(TabChat, msg)

	case ResultsMsg:
		cmd := a.forward(TabResult, msg)
		a.statusMsg = fmt.Sprintf("%d result(s) ready, F2 to view", len(msg.Results))
		return a, cmd

	case SummaryMsg, ExportedMsg:
		return a, a.forward(TabResult, msg)

	case LogMsg, tickMsg:
		return a, a.forward(TabLog, msg)
	}

	return a, a.forward(a.activeTab, msg)
}

func (a *App) forward(tab int, msg tea.Msg) tea.Cmd {
	if tab < 0 || tab >= len(a.views) {
		return nil
	}
	updated, cmd := a.views[tab].Update(msg)
	a.views[tab] = updated
	return cmd
}

// handleKey processes keyboard input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case ModeCommand:
		return a.handleCommandMode(msg)
	case ModeJump:
		return a.handleJumpMode(msg)
	default:
		return a.handleNormalMode(msg)
	}
}

func (a *App) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "f1":
		return a.switchTab(TabChat)
	case "f2":
		return a.switchTab(TabResult)
	case "f3":
		return a.switchTab(TabLog)
	}

	// When the active view is accepting text input, every other key
	// belongs to it.
	if a.views[a.activeTab].WantsTextInput() {
		return a, a.forward(a.activeTab, msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "tab":
		return a.switchTab((a.activeTab + 1) % len(a.views))
	case "shift+tab":
		return a.switchTab((a.activeTab + len(a.views) - 1) % len(a.views))
	case ":":
		a.mode = ModeCommand
		a.cmdInput = ""
		return a, nil
	case "/":
		a.mode = ModeJump
		a.cmdInput = ""
		return a, nil
	case "?":
		a.showHelp = !a.showHelp
		return a, nil
	}

	return a, a.forward(a.activeTab, msg)
}

func (a *App) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := a.executeCommand(a.cmdInput)
		a.mode = ModeNormal
		a.cmdInput = ""
		return a, cmd
	case "esc":
		a.mode = ModeNormal
		a.cmdInput = ""
		return a, nil
	case "backspace":
		a.cmdInput = dropLastRune(a.cmdInput)
		return a, nil
	case "ctrl+c":
		return a, tea.Quit
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		a.cmdInput += msg.String()
	}
	return a, nil
}

func (a *App) handleJumpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.jumpToView(a.cmdInput)
		a.mode = ModeNormal
		a.cmdInput = ""
		return a, nil
	case "esc":
		a.mode = ModeNormal
		a.cmdInput = ""
		return a, nil
	case "backspace":
		a.cmdInput = dropLastRune(a.cmdInput)
		return a, nil
	case "ctrl+c":
		return a, tea.Quit
	}
	if msg.Type == tea.KeyRunes {
		a.cmdInput += msg.String()
	}
	return a, nil
}

func (a *App) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx >= 0 && idx < len(a.views) {
		a.activeTab = idx
		a.showHelp = false
	}
	return a, nil
}

func (a *App) jumpToView(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, v := range a.views {
		if strings.Contains(strings.ToLower(v.Name()), name) {
			a.activeTab = i
			return
		}
	}
	a.statusMsg = "view not found: " + name
}

// executeCommand runs a `:` command and returns a follow-up, if any.
func (a *App) executeCommand(input string) tea.Cmd {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	store := a.ctl.Store()

	switch fields[0] {
	case "q", "quit":
		return tea.Quit

	case "clear":
		a.chat.Clear()
		a.result.Reset()
		a.statusMsg = "conversation cleared"

	case "mode":
		if len(fields) < 2 {
			a.statusMsg = "mode: " + string(store.Mode())
			return nil
		}
		m, ok := session.ParseMode(fields[1])
		if !ok {
			a.statusMsg = "usage: :mode structured|unstructured"
			return nil
		}
		a.ctl.SetMode(m)
		a.chat.refresh()
		a.statusMsg = "mode: " + modeLabel(m)

	case "sql":
		on := !store.BoolFlag(session.FlagAutoExpandSQL, false)
		store.SetFlag(session.FlagAutoExpandSQL, on)
		a.chat.refresh()
		a.statusMsg = fmt.Sprintf("expand SQL: %t", on)

	case "debug":
		on := !store.BoolFlag(session.FlagShowDebug, false)
		store.SetFlag(session.FlagShowDebug, on)
		a.chat.refresh()
		a.statusMsg = fmt.Sprintf("show request IDs: %t", on)

	case "export":
		now := time.Now()
		path := filepath.Join(a.exportDir, session.ExportFilename(now))
		turns := store.All()
		return func() tea.Msg {
			data, err := session.MarshalExport(turns, now)
			if err == nil {
				err = os.WriteFile(path, data, 0644)
			}
			if err != nil {
				return StatusMsg("export failed: " + err.Error())
			}
			return StatusMsg("saved " + path)
		}

	default:
		a.statusMsg = "unknown command: " + input
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var inner string
	if a.showHelp {
		inner = a.renderHelp()
	} else {
		inner = a.views[a.activeTab].View()
	}

	frameHeight := a.height - 4
	if frameHeight < 0 {
		frameHeight = 0
	}
	frame := StyleBorder.
		Width(a.width - 2).
		Height(frameHeight).
		Render(inner)

	return a.renderHeader() + "\n" + frame + "\n" + a.renderStatusBar()
}

// renderHeader draws logo, tabs and warehouse info on one line.
func (a *App) renderHeader() string {
	left := StyleBold.Render("📊 paiAnalyst") + StyleDimmed.Render(" v"+appVersion) + "  "

	for i, v := range a.views {
		label := fmt.Sprintf("F%d %s", i+1, v.Name())
		if i == a.activeTab {
			left += StyleTabActive.Render(label)
		} else {
			left += StyleTabInactive.Render(label)
		}
	}

	right := StyleDimmed.Render("no warehouse")
	if a.warehouse != "" {
		right = StyleSuccess.Render("⚡ " + a.warehouse)
	}
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Width(a.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (a *App) renderStatusBar() string {
	var content string

	switch a.mode {
	case ModeCommand:
		content = StylePrompt.Render(":") + a.cmdInput + "█"
	case ModeJump:
		content = StylePrompt.Render("/") + a.cmdInput + "█"
	default:
		if a.statusMsg != "" {
			content = a.statusMsg
		} else {
			var parts []string
			for _, h := range a.getHelpItems() {
				parts = append(parts, StyleHelpKey.Render(h.Key)+" "+StyleHelpDesc.Render(h.Desc))
			}
			content = strings.Join(parts, "  │  ")
		}
	}

	return StyleStatusBar.Width(a.width).Render(content)
}

func (a *App) getHelpItems() []KeyBinding {
	global := []KeyBinding{
		{Key: "F1-F3", Desc: "views"},
		{Key: "Ctrl+C", Desc: "quit"},
	}
	if !a.views[a.activeTab].WantsTextInput() {
		global = append([]KeyBinding{{Key: "?", Desc: "help"}}, global...)
	}
	return append(a.views[a.activeTab].ShortHelp(), global...)
}

func (a *App) renderHelp() string {
	help := []string{
		StyleTitle.Render("⌨ paiAnalyst Keyboard Shortcuts"),
		"",
		StyleHelpKey.Render("F1 / F2 / F3") + "     Chat, Result, Log",
		StyleHelpKey.Render("Tab / Shift+Tab") + "  Switch views (outside Chat)",
		StyleHelpKey.Render("/") + "                Jump to view by name",
		StyleHelpKey.Render("?") + "                Toggle this help",
		StyleHelpKey.Render("Ctrl+C") + "           Quit",
		"",
		StyleTitle.Render("Chat"),
		"",
		StyleHelpKey.Render("Enter") + "            Send question, or the highlighted suggestion",
		StyleHelpKey.Render("Tab") + "              Highlight next suggestion",
		StyleHelpKey.Render("Ctrl+T") + "           Switch Data Analyst / Document Q&A",
		StyleHelpKey.Render("Ctrl+L") + "           Clear conversation",
		"",
		StyleTitle.Render("Result"),
		"",
		StyleHelpKey.Render("v") + "                Data / Chart / Summary",
		StyleHelpKey.Render("f x y o s") + "        Chart family, x, y, color, sort",
		StyleHelpKey.Render("e / E / J") + "        Save CSV / XLSX / chart JSON",
		StyleHelpKey.Render("c") + "                Copy SQL",
		StyleHelpKey.Render("m") + "                Summarize",
		"",
		StyleTitle.Render("Commands"),
		"",
		StyleHelpKey.Render(":clear") + "           Clear conversation",
		StyleHelpKey.Render(":export") + "          Save chat as JSON",
		StyleHelpKey.Render(":mode <m>") + "        structured or unstructured",
		StyleHelpKey.Render(":sql :debug") + "      Toggle SQL expansion / request IDs",
		StyleHelpKey.Render(":quit") + "            Quit",
		"",
		StyleDimmed.Render("Press ? to close"),
	}

	return lipgloss.NewStyle().
		Width(a.width-4).
		Height(a.height-5).
		Padding(1, 2).
		Render(strings.Join(help, "\n"))
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
