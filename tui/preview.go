package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/DachengChen/paiAnalyst/chart"
	"github.com/DachengChen/paiAnalyst/table"
	"github.com/mattn/go-runewidth"
)

const (
	previewRows   = 30
	labelWidth    = 18
	gridCellWidth = 30
	plotHeight    = 12
)

// renderGrid draws t as a fixed-width text table. Cells wider than
// gridCellWidth are cut.
func renderGrid(t *table.Table, maxRows int) []string {
	n := len(t.Rows)
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}

	widths := make([]int, len(t.Columns))
	for j, c := range t.Columns {
		widths[j] = runewidth.StringWidth(c.Name)
	}
	cells := make([][]string, n)
	for i := 0; i < n; i++ {
		cells[i] = make([]string, len(t.Columns))
		for j, v := range t.Rows[i] {
			s := "NULL"
			if v != nil {
				s = strings.ReplaceAll(table.FormatCell(v), "\n", " ")
			}
			s = runewidth.Truncate(s, gridCellWidth, "…")
			cells[i][j] = s
			if w := runewidth.StringWidth(s); w > widths[j] {
				widths[j] = w
			}
		}
	}

	row := func(vals []string) string {
		parts := make([]string, len(vals))
		for j, s := range vals {
			parts[j] = runewidth.FillRight(s, widths[j])
		}
		return strings.Join(parts, " │ ")
	}
	seps := make([]string, len(widths))
	for j, w := range widths {
		seps[j] = strings.Repeat("─", w)
	}

	lines := []string{row(t.Names()), strings.Join(seps, "─┼─")}
	for _, r := range cells {
		lines = append(lines, row(r))
	}
	if n < len(t.Rows) {
		lines = append(lines, fmt.Sprintf("... %s more rows", table.FormatCount(len(t.Rows)-n)))
	}
	return lines
}

// renderPreview draws a rendered chart in the terminal. The Vega-Lite
// artifact is what exports carry; this is only an approximation.
func renderPreview(t *table.Table, spec chart.Spec, art *chart.Artifact, width int) []string {
	barWidth := width - labelWidth - 16
	if barWidth < 10 {
		barWidth = 10
	}
	switch spec.Family {
	case chart.Pie:
		return piePreview(art, spec, barWidth)
	case chart.Scatter:
		return scatterPreview(t, spec, width-labelWidth)
	}

	xi, yi, ci := t.ColumnIndex(spec.X), t.ColumnIndex(spec.Y), t.ColumnIndex(spec.Color)
	rows := chart.Sorted(t, spec)

	var peak float64
	for _, r := range rows {
		if f, ok := table.AsFloat(r[yi]); ok && math.Abs(f) > peak {
			peak = math.Abs(f)
		}
	}

	glyph := "█"
	switch spec.Family {
	case chart.Line:
		glyph = "•"
	case chart.Area:
		glyph = "▒"
	}

	var lines []string
	for i, r := range rows {
		if i == previewRows {
			lines = append(lines, StyleDimmed.Render(fmt.Sprintf("... %d more rows", len(rows)-i)))
			break
		}
		label := runewidth.FillRight(runewidth.Truncate(cellText(r[xi]), labelWidth-1, "…"), labelWidth)
		f, ok := table.AsFloat(r[yi])
		if !ok {
			lines = append(lines, label+StyleDimmed.Render("NULL"))
			continue
		}
		n := scaled(f, peak, barWidth)
		var bar string
		if spec.Family == chart.Line && n > 0 {
			bar = strings.Repeat(" ", n-1) + glyph
		} else {
			bar = strings.Repeat(glyph, n)
		}
		line := label + StyleBar.Render(bar) + " " + table.FormatCell(r[yi])
		if ci >= 0 {
			line += StyleDimmed.Render("  " + cellText(r[ci]))
		}
		lines = append(lines, line)
	}
	return lines
}

func piePreview(art *chart.Artifact, spec chart.Spec, barWidth int) []string {
	data, _ := art.Spec["data"].(map[string]any)
	values, _ := data["values"].([]map[string]any)

	var total float64
	for _, v := range values {
		f, _ := v[spec.Y].(float64)
		total += f
	}
	var lines []string
	for _, v := range values {
		f, _ := v[spec.Y].(float64)
		share := 0.0
		if total != 0 {
			share = f / total
		}
		label := runewidth.FillRight(runewidth.Truncate(cellText(v[spec.X]), labelWidth-1, "…"), labelWidth)
		lines = append(lines, fmt.Sprintf("%s%s %5.1f%%", label,
			StyleBar.Render(strings.Repeat("█", scaled(share, 1, barWidth))), share*100))
	}
	return lines
}

func scatterPreview(t *table.Table, spec chart.Spec, width int) []string {
	if width < 10 {
		width = 10
	}
	xi, yi := t.ColumnIndex(spec.X), t.ColumnIndex(spec.Y)
	type point struct{ x, y float64 }
	var pts []point
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range t.Rows {
		x, okx := table.AsFloat(r[xi])
		y, oky := table.AsFloat(r[yi])
		if !okx || !oky {
			continue
		}
		pts = append(pts, point{x, y})
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if len(pts) == 0 {
		return []string{StyleDimmed.Render("no plottable points")}
	}

	grid := make([][]rune, plotHeight)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for _, p := range pts {
		col := position(p.x, minX, maxX, width)
		row := plotHeight - 1 - position(p.y, minY, maxY, plotHeight)
		grid[row][col] = '●'
	}

	lines := []string{StyleDimmed.Render(fmt.Sprintf("%s ↑ %s..%s", spec.Y, compact(minY), compact(maxY)))}
	for _, g := range grid {
		lines = append(lines, "│"+StyleBar.Render(string(g)))
	}
	lines = append(lines, "└"+strings.Repeat("─", width))
	lines = append(lines, StyleDimmed.Render(fmt.Sprintf("%s → %s..%s", spec.X, compact(minX), compact(maxX))))
	return lines
}

func position(v, lo, hi float64, n int) int {
	if hi == lo {
		return n / 2
	}
	p := int((v - lo) / (hi - lo) * float64(n-1))
	if p < 0 {
		return 0
	}
	if p >= n {
		return n - 1
	}
	return p
}

func scaled(v, peak float64, width int) int {
	if peak == 0 {
		return 0
	}
	n := int(math.Round(math.Abs(v) / peak * float64(width)))
	if n == 0 && v != 0 {
		n = 1
	}
	return n
}

func compact(f float64) string {
	return fmt.Sprintf("%.4g", f)
}

func cellText(v any) string {
	if v == nil {
		return "NULL"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return table.FormatCell(v)
}
