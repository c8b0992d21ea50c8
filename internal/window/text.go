package window

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/toastkit/internal/geometry"
)

// Metrics converts text cells to container units.
type Metrics struct {
	CellWidth  float64
	LineHeight float64
	// Padding is added on every side of the text block.
	Padding float64
}

// CellMetrics measures in terminal cells.
var CellMetrics = Metrics{CellWidth: 1, LineHeight: 1, Padding: 1}

// PixelMetrics estimates label sizes in pixels for a default desktop font.
var PixelMetrics = Metrics{CellWidth: 8, LineHeight: 20, Padding: 12}

// Text is entry content made of a summary line and an optional body.
// It satisfies entry.Content.
type Text struct {
	Summary string
	Body    string
	Metrics Metrics
}

// Lines wraps the text to at most cols cells per line.
func (t Text) Lines(cols int) []string {
	var lines []string
	for _, part := range []string{t.Summary, t.Body} {
		if part == "" {
			continue
		}
		if cols > 0 {
			part = runewidth.Wrap(part, cols)
		}
		lines = append(lines, strings.Split(part, "\n")...)
	}
	return lines
}

// PreferredSize implements entry.Content.
func (t Text) PreferredSize(maxWidth float64) geometry.Size {
	m := t.Metrics
	if m.CellWidth <= 0 || m.LineHeight <= 0 {
		m = CellMetrics
	}

	cols := 0
	if maxWidth > 0 {
		cols = int((maxWidth - 2*m.Padding) / m.CellWidth)
		if cols < 1 {
			cols = 1
		}
	}

	lines := t.Lines(cols)
	widest := 0
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > widest {
			widest = w
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}

	return geometry.Size{
		Width:  float64(widest)*m.CellWidth + 2*m.Padding,
		Height: float64(len(lines))*m.LineHeight + 2*m.Padding,
	}
}
