// view_log.go: Tail of the application log.
//
// Re-reads the end of app.log periodically using tea.Tick. The user
// can pause/resume following.
package tui

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	logRefreshInterval = 2 * time.Second
	logTailBytes       = 64 << 10
	logTailLines       = 500
)

type LogView struct {
	path     string
	viewport *Viewport
	lines    []string
	paused   bool
	err      error
	width    int
	height   int
}

func NewLogView(path string) *LogView {
	return &LogView{
		path:     path,
		viewport: NewViewport(80, 20),
	}
}

func (v *LogView) Name() string         { return "Log" }
func (v *LogView) WantsTextInput() bool { return false }

func (v *LogView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.SetSize(width-2, height-2)
}

func (v *LogView) ShortHelp() []KeyBinding {
	pause := "pause"
	if v.paused {
		pause = "resume"
	}
	return []KeyBinding{
		{Key: "p", Desc: pause},
		{Key: "↑/↓", Desc: "scroll"},
		{Key: "w", Desc: "wrap"},
	}
}

// tickMsg triggers periodic refresh.
type tickMsg time.Time

func (v *LogView) Init() tea.Cmd {
	return tea.Batch(v.fetchLog(), v.tick())
}

func (v *LogView) tick() tea.Cmd {
	return tea.Tick(logRefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (v *LogView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case tickMsg:
		if !v.paused {
			return v, tea.Batch(v.fetchLog(), v.tick())
		}
		return v, v.tick()

	case LogMsg:
		v.err = msg.Err
		if msg.Err == nil {
			v.lines = msg.Lines
		}
		v.viewport.SetContentLines(v.lines)
		if !v.paused {
			v.viewport.End()
		}
		return v, nil
	}

	return v, nil
}

func (v *LogView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "p":
		v.paused = !v.paused
	case "k", "up":
		v.viewport.ScrollUp(1)
	case "j", "down":
		v.viewport.ScrollDown(1)
	case "pgup":
		v.viewport.PageUp()
	case "pgdown":
		v.viewport.PageDown()
	case "home":
		v.viewport.Home()
	case "end":
		v.viewport.End()
	case "w":
		v.viewport.ToggleWrap()
	}
	return v, nil
}

func (v *LogView) fetchLog() tea.Cmd {
	path := v.path
	return func() tea.Msg {
		lines, err := tailFile(path, logTailBytes, logTailLines)
		return LogMsg{Lines: lines, Err: err}
	}
}

// tailFile returns up to maxLines complete lines from the last
// maxBytes of path. A missing file is an empty log.
func tailFile(path string, maxBytes int64, maxLines int) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	offset := info.Size() - maxBytes
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if offset > 0 && len(lines) > 1 {
		lines = lines[1:] // first line is partial
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

func (v *LogView) View() string {
	status := StyleSuccess.Render("● FOLLOWING")
	if v.paused {
		status = StyleWarning.Render("● PAUSED")
	}
	header := "  " + StyleTitle.Render("📋 Application Log") + "  " + status + "  " + StyleDimmed.Render(v.path)
	if v.err != nil {
		header += "  " + StyleError.Render(v.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, v.viewport.Render())
}
