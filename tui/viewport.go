// viewport.go provides the scrollable text area shared by the chat,
// result and log views: vertical paging, horizontal scrolling for wide
// tables, and optional wrapping.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Viewport is a scrollable block of lines.
type Viewport struct {
	width    int
	height   int
	content  []string
	scrollY  int
	scrollX  int
	wrapText bool
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{width: width, height: height}
}

// SetContent replaces the content with newline-separated text.
func (v *Viewport) SetContent(content string) {
	v.SetContentLines(strings.Split(content, "\n"))
}

// SetContentLines replaces the content with pre-split lines.
func (v *Viewport) SetContentLines(lines []string) {
	v.content = lines
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// ToggleWrap toggles text wrapping.
func (v *Viewport) ToggleWrap() {
	v.wrapText = !v.wrapText
	v.scrollX = 0
	v.clampScroll()
}

func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
}

func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
}

// ScrollLeft and ScrollRight only apply when wrapping is off.
func (v *Viewport) ScrollLeft(n int) {
	if v.wrapText {
		return
	}
	v.scrollX -= n
	if v.scrollX < 0 {
		v.scrollX = 0
	}
}

func (v *Viewport) ScrollRight(n int) {
	if !v.wrapText {
		v.scrollX += n
	}
}

func (v *Viewport) PageUp()   { v.ScrollUp(v.height) }
func (v *Viewport) PageDown() { v.ScrollDown(v.height) }

// Home scrolls to the top left.
func (v *Viewport) Home() {
	v.scrollY = 0
	v.scrollX = 0
}

// End scrolls to the bottom.
func (v *Viewport) End() {
	v.scrollY = v.maxScrollY()
}

// AtEnd reports whether the last line is visible.
func (v *Viewport) AtEnd() bool {
	return v.scrollY >= v.maxScrollY()
}

// Render returns the visible portion of the content, padded to the
// viewport height.
func (v *Viewport) Render() string {
	if len(v.content) == 0 {
		return ""
	}

	lines := v.lines()
	end := v.scrollY + v.height
	if end > len(lines) {
		end = len(lines)
	}
	var visible []string
	if v.scrollY < len(lines) {
		visible = append(visible, lines[v.scrollY:end]...)
	}
	for i, line := range visible {
		visible[i] = v.clip(line)
	}
	for len(visible) < v.height {
		visible = append(visible, "")
	}

	out := strings.Join(visible, "\n")
	if ind := v.scrollIndicator(len(lines)); ind != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, ind)
	}
	return out
}

// lines returns the content after wrapping.
func (v *Viewport) lines() []string {
	if !v.wrapText || v.width <= 0 {
		return v.content
	}
	var wrapped []string
	for _, line := range v.content {
		if lipgloss.Width(line) <= v.width {
			wrapped = append(wrapped, line)
			continue
		}
		r := []rune(line)
		for len(r) > v.width {
			wrapped = append(wrapped, string(r[:v.width]))
			r = r[v.width:]
		}
		wrapped = append(wrapped, string(r))
	}
	return wrapped
}

// clip applies the horizontal offset and truncates to the width.
// Offsets are counted in runes, so horizontal scrolling is meant for
// unstyled lines such as table grids.
func (v *Viewport) clip(line string) string {
	if v.scrollX > 0 {
		r := []rune(line)
		if v.scrollX >= len(r) {
			return ""
		}
		line = string(r[v.scrollX:])
	}
	if v.width > 0 && lipgloss.Width(line) > v.width {
		line = lipgloss.NewStyle().MaxWidth(v.width).Render(line)
	}
	return line
}

func (v *Viewport) clampScroll() {
	if limit := v.maxScrollY(); v.scrollY > limit {
		v.scrollY = limit
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *Viewport) maxScrollY() int {
	limit := len(v.lines()) - v.height
	if limit < 0 {
		return 0
	}
	return limit
}

func (v *Viewport) scrollIndicator(total int) string {
	if total <= v.height {
		return ""
	}
	pct := v.scrollY * 100 / total
	label := fmt.Sprintf(" %d%% (%d/%d)", pct, v.scrollY+1, total)
	rule := v.width - len(label)
	if rule < 0 {
		rule = 0
	}
	return StyleDimmed.Render(strings.Repeat("─", rule) + label)
}
