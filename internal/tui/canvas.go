package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/window"
)

// minAlpha is the opacity below which a toast is not drawn.
const minAlpha = 0.1

// fadeAlpha is the opacity below which a toast is drawn faint.
const fadeAlpha = 0.6

// toast is one entry as it appears on the stage.
type toast struct {
	frame geometry.Rect
	alpha float64
	text  window.Text
	style lipgloss.Style
}

var (
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// styleFor picks a toast style by priority. Held toasts are underlined.
func styleFor(p int, held bool) lipgloss.Style {
	var s lipgloss.Style
	switch {
	case p >= attr.PriorityHigh:
		s = criticalStyle
	case p < attr.PriorityNormal:
		s = lowStyle
	default:
		s = normalStyle
	}
	if held {
		s = s.Underline(true)
	}
	return s
}

type cell struct {
	r     rune
	style int // index into the styles slice, -1 for the background
}

// render draws toasts into a width x height grid of cells. Later toasts are
// drawn over earlier ones.
func render(width, height int, toasts []toast) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' ', style: -1}
		}
	}

	styles := make([]lipgloss.Style, 0, len(toasts))
	for _, t := range toasts {
		if t.alpha < minAlpha {
			continue
		}
		style := t.style
		if t.alpha < fadeAlpha {
			style = style.Faint(true)
		}
		styles = append(styles, style)
		draw(grid, t, len(styles)-1)
	}

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = renderRow(row, styles)
	}
	return strings.Join(lines, "\n")
}

func set(grid [][]cell, x, y int, r rune, style int) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = cell{r: r, style: style}
}

// draw paints t's border and text. Anything off the grid is clipped.
func draw(grid [][]cell, t toast, style int) {
	x0 := int(math.Round(t.frame.X))
	y0 := int(math.Round(t.frame.Y))
	w := int(math.Round(t.frame.Width))
	h := int(math.Round(t.frame.Height))
	if w < 2 || h < 2 {
		return
	}
	x1, y1 := x0+w-1, y0+h-1

	for x := x0; x <= x1; x++ {
		set(grid, x, y0, '─', style)
		set(grid, x, y1, '─', style)
	}
	for y := y0; y <= y1; y++ {
		set(grid, x0, y, '│', style)
		set(grid, x1, y, '│', style)
		for x := x0 + 1; x < x1; x++ {
			set(grid, x, y, ' ', style)
		}
	}
	set(grid, x0, y0, '╭', style)
	set(grid, x1, y0, '╮', style)
	set(grid, x0, y1, '╰', style)
	set(grid, x1, y1, '╯', style)

	inner := w - 2
	for i, line := range t.text.Lines(inner) {
		y := y0 + 1 + i
		if y >= y1 {
			break
		}
		x := x0 + 1
		for _, r := range runewidth.Truncate(line, inner, "…") {
			set(grid, x, y, r, style)
			x += max(1, runewidth.RuneWidth(r))
		}
	}
}

// renderRow joins a row into runs of equal style.
func renderRow(row []cell, styles []lipgloss.Style) string {
	var b strings.Builder
	var run strings.Builder
	current := -1
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if current < 0 {
			b.WriteString(run.String())
		} else {
			b.WriteString(styles[current].Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range row {
		if c.style != current {
			flush()
			current = c.style
		}
		run.WriteRune(c.r)
	}
	flush()
	return b.String()
}
