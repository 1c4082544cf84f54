package charts

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// parseHexColor accepts "#rgb", "#rrggbb" and bare "rrggbb"
func parseHexColor(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return colorful.Color{}, false
	}
	if !strings.HasPrefix(s, "#") {
		if len(s) != 6 {
			return colorful.Color{}, false
		}
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// drawingColor converts a palette entry for go-chart, falling back to the
// library's default palette for values it cannot parse (e.g. CSS names).
func drawingColor(s string, index int) drawing.Color {
	c, ok := parseHexColor(s)
	if !ok {
		return chart.GetDefaultColor(index)
	}
	r, g, b := c.RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}

// terminalColor returns a lipgloss color string; unparseable values are
// handed through so ANSI codes like "196" keep working.
func terminalColor(s string) string {
	if c, ok := parseHexColor(s); ok {
		return c.Hex()
	}
	return strings.TrimSpace(s)
}
