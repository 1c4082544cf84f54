package charts

import (
	"context"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	terminalTitleStyle  = lipgloss.NewStyle().Bold(true)
	terminalAxisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	terminalLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	terminalLegendStyle = lipgloss.NewStyle().PaddingLeft(2)
)

const (
	terminalBarRune   = "█"
	terminalSwatch    = "■"
	terminalAxis      = "│"
	terminalEmptyText = "(no issues)"
)

// TerminalRenderer draws the tally as horizontal bars in a terminal
type TerminalRenderer struct{}

// NewTerminalRenderer creates a terminal backend
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// Name returns the backend name
func (r *TerminalRenderer) Name() string { return "terminal" }

// Render captures the series and lays them out for the initial viewport,
// measured in cells.
func (r *TerminalRenderer) Render(ctx context.Context, container string, cfg RenderConfig) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if container == "" {
		return nil, ErrNoContainer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &TerminalHandle{
		container: container,
		title:     cfg.Title,
		labels:    append([]string(nil), cfg.PointLabels...),
		legend:    append([]string(nil), cfg.LegendEntries...),
	}
	for i, values := range cfg.Series {
		v := 0.0
		if len(values) > 0 {
			v = values[0]
		}
		h.values = append(h.values, v)
		h.colors = append(h.colors, terminalColor(cfg.Colors[i]))
	}

	if err := h.layout(cfg.Viewport); err != nil {
		return nil, err
	}
	return h, nil
}

// TerminalHandle is a chart drawn as text. Every relayout recomputes the
// scale and column widths from the captured values.
type TerminalHandle struct {
	container string
	title     string
	values    []float64
	colors    []string
	labels    []string
	legend    []string

	viewport Viewport
	view     string
	layouts  int
}

// Container returns the name the chart is bound to
func (h *TerminalHandle) Container() string { return h.container }

// Relayout redraws the chart for the new terminal size
func (h *TerminalHandle) Relayout(ctx context.Context, vp Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.layout(vp)
}

func (h *TerminalHandle) layout(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}

	var rows []string
	if h.title != "" {
		rows = append(rows, terminalTitleStyle.Render(runewidth.Truncate(h.title, vp.Width, "…")))
	}

	if len(h.values) == 0 {
		rows = append(rows, terminalLabelStyle.Render(terminalEmptyText))
	} else {
		legendWidth := terminalLegendWidth(h.legend, vp.Width)
		plotWidth := vp.Width - legendWidth
		body := lipgloss.JoinHorizontal(lipgloss.Top,
			h.plotColumn(plotWidth),
			h.legendColumn(legendWidth),
		)
		rows = append(rows, body)
	}

	lines := strings.Split(lipgloss.JoinVertical(lipgloss.Left, rows...), "\n")
	if len(lines) > vp.Height {
		lines = lines[:vp.Height]
	}

	h.viewport = vp
	h.view = strings.Join(lines, "\n")
	h.layouts++
	return nil
}

// plotColumn renders one bar per category, scaled to the largest value
func (h *TerminalHandle) plotColumn(width int) string {
	maxValue := 0.0
	for _, v := range h.values {
		maxValue = math.Max(maxValue, v)
	}

	lines := make([]string, 0, len(h.values))
	for i, v := range h.values {
		label := " " + h.labels[i]
		avail := width - runewidth.StringWidth(terminalAxis) - 1
		labelWidth := runewidth.StringWidth(label)
		barSpace := avail - labelWidth
		if barSpace < 1 {
			barSpace = 1
			label = runewidth.Truncate(label, max(avail-1, 0), "…")
		}

		n := 0
		if maxValue > 0 {
			n = int(math.Round(v / maxValue * float64(barSpace)))
		}
		if n == 0 && v > 0 {
			n = 1
		}

		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(h.colors[i])).Render(strings.Repeat(terminalBarRune, n))
		line := terminalAxisStyle.Render(terminalAxis) + bar + terminalLabelStyle.Render(label)
		lines = append(lines, lipgloss.NewStyle().Width(width).MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

// legendColumn lists each legend entry next to a swatch in its series color
func (h *TerminalHandle) legendColumn(width int) string {
	if width <= 0 {
		return ""
	}
	inner := width - terminalLegendStyle.GetPaddingLeft() - runewidth.StringWidth(terminalSwatch) - 1
	lines := make([]string, 0, len(h.legend))
	for i, entry := range h.legend {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(h.colors[i])).Render(terminalSwatch)
		lines = append(lines, swatch+" "+runewidth.Truncate(entry, max(inner, 0), "…"))
	}
	return terminalLegendStyle.Render(strings.Join(lines, "\n"))
}

// String returns the rendered chart
func (h *TerminalHandle) String() string { return h.view }

// Viewport returns the viewport of the current layout
func (h *TerminalHandle) Viewport() Viewport { return h.viewport }

// Layouts returns how many layout passes the handle has run
func (h *TerminalHandle) Layouts() int { return h.layouts }

// WriteTo writes the rendered chart followed by a newline
func (h *TerminalHandle) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, h.view+"\n")
	return int64(n), err
}

// terminalLegendWidth sizes the legend column to its longest entry, capped at
// two fifths of the terminal.
func terminalLegendWidth(entries []string, width int) int {
	longest := 0
	for _, e := range entries {
		longest = max(longest, runewidth.StringWidth(e))
	}
	w := longest + terminalLegendStyle.GetPaddingLeft() + runewidth.StringWidth(terminalSwatch) + 1
	if limit := width * 2 / 5; w > limit {
		w = limit
	}
	return w
}
