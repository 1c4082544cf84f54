package charts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/mattn/go-runewidth"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tallychart/internal/models"
)

var pngTextColor = drawing.Color{R: 51, G: 51, B: 51, A: 255}

const (
	pngLegendFontSize = 10.0
	pngLabelFontSize  = 10.0
	pngLegendSwatch   = 10
	pngLegendLine     = 18
)

// pngBar is one category drawn as its own series
type pngBar struct {
	value float64
	color drawing.Color
	label string
}

// barSeries draws every category as a centered bar with its point label above it
type barSeries struct {
	bars []pngBar
}

func (bs barSeries) GetName() string           { return "tally" }
func (bs barSeries) GetStyle() chart.Style     { return chart.Style{} }
func (bs barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (bs barSeries) Len() int                  { return len(bs.bars) }
func (bs barSeries) Validate() error           { return nil }
func (bs barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	if len(bs.bars) == 0 {
		return
	}
	slot := xrange.Translate(1) - xrange.Translate(0)
	half := int(float64(slot) * 0.3)
	if half < 1 {
		half = 1
	}
	base := canvasBox.Bottom - yrange.Translate(0)

	for i, b := range bs.bars {
		cx := canvasBox.Left + xrange.Translate(float64(i))
		top := canvasBox.Bottom - yrange.Translate(b.value)
		if top < base {
			chart.Draw.Box(r, chart.Box{Top: top, Left: cx - half, Right: cx + half, Bottom: base},
				chart.Style{FillColor: b.color, StrokeColor: b.color, StrokeWidth: 1})
		}

		r.SetFont(defaults.GetFont())
		r.SetFontSize(pngLabelFontSize)
		r.SetFontColor(pngTextColor)
		tb := r.MeasureText(b.label)
		r.Text(b.label, cx-tb.Width()/2, top-4)
	}
}

// emptySeries keeps go-chart satisfied when there is nothing to draw
type emptySeries struct{}

func (emptySeries) GetName() string           { return "empty" }
func (emptySeries) GetStyle() chart.Style     { return chart.Style{} }
func (emptySeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (emptySeries) Len() int                  { return 0 }
func (emptySeries) Validate() error           { return nil }
func (emptySeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
}

// PNGRenderer renders the tally to a PNG image with go-chart
type PNGRenderer struct{}

// NewPNGRenderer creates a PNG backend
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{}
}

// Name returns the backend name
func (r *PNGRenderer) Name() string { return "png" }

// Render captures the series and draws them at the initial viewport
func (r *PNGRenderer) Render(ctx context.Context, container string, cfg RenderConfig) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if container == "" {
		return nil, ErrNoContainer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &PNGHandle{
		container: container,
		title:     cfg.Title,
		legend:    append([]string(nil), cfg.LegendEntries...),
	}
	for i, values := range cfg.Series {
		color := drawingColor(cfg.Colors[i], i)
		h.colors = append(h.colors, color)
		for _, v := range values {
			h.bars = append(h.bars, pngBar{value: v, color: color, label: cfg.PointLabels[i]})
		}
	}

	if err := h.layout(cfg.Viewport); err != nil {
		return nil, err
	}
	return h, nil
}

// PNGHandle is a rendered PNG chart. The image is redrawn from scratch on
// every relayout.
type PNGHandle struct {
	container string
	title     string
	bars      []pngBar
	colors    []drawing.Color
	legend    []string

	viewport Viewport
	image    []byte
	layouts  int
}

// Container returns the name the image is bound to
func (h *PNGHandle) Container() string { return h.container }

// Relayout redraws the image for the new viewport, recomputing axis ranges
// and all pixel geometry.
func (h *PNGHandle) Relayout(ctx context.Context, vp Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.layout(vp)
}

func (h *PNGHandle) layout(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}

	n := len(h.bars)
	maxValue := 0.0
	for _, b := range h.bars {
		maxValue = math.Max(maxValue, b.value)
	}
	legendWidth := pngLegendWidth(vp.Width)

	// ticks span the whole x range so the range cannot be narrowed by them
	slots := n
	if slots == 0 {
		slots = 1
	}
	ticks := make([]chart.Tick, 0, slots+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i := 0; i < slots; i++ {
		ticks = append(ticks, chart.Tick{Value: float64(i)})
	}
	ticks = append(ticks, chart.Tick{Value: float64(slots) - 0.5})

	graph := chart.Chart{
		Title:      h.title,
		TitleStyle: chart.Style{FontSize: 14, FontColor: pngTextColor},
		Width:      vp.Width,
		Height:     vp.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: legendWidth, Bottom: 20}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(slots) - 0.5},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: niceCeiling(maxValue)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return models.FormatCount(f)
				}
				return ""
			},
			GridMajorStyle: chart.Style{StrokeColor: drawing.Color{R: 230, G: 230, B: 230, A: 255}, StrokeWidth: 1},
		},
	}

	if n == 0 {
		graph.Series = []chart.Series{emptySeries{}}
	} else {
		graph.Series = []chart.Series{barSeries{bars: h.bars}}
	}
	graph.Elements = []chart.Renderable{h.legendRenderable(vp.Width, legendWidth)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render png chart: %w", err)
	}

	h.viewport = vp
	h.image = buf.Bytes()
	h.layouts++
	return nil
}

// legendRenderable draws the legend in the reserved column right of the plot
func (h *PNGHandle) legendRenderable(width, legendWidth int) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		if len(h.legend) == 0 {
			return
		}
		r.SetFont(defaults.GetFont())
		r.SetFontSize(pngLegendFontSize)
		r.SetFontColor(pngTextColor)

		x := width - legendWidth + 16
		maxChars := (legendWidth - 16 - pngLegendSwatch - 6) / 6
		if maxChars < 4 {
			maxChars = 4
		}

		y := canvasBox.Top
		for i, entry := range h.legend {
			if y+pngLegendSwatch > canvasBox.Bottom {
				break
			}
			chart.Draw.Box(r, chart.Box{Top: y, Left: x, Right: x + pngLegendSwatch, Bottom: y + pngLegendSwatch},
				chart.Style{FillColor: h.colors[i], StrokeColor: h.colors[i], StrokeWidth: 1})
			r.SetFontColor(pngTextColor)
			r.Text(runewidth.Truncate(entry, maxChars, "…"), x+pngLegendSwatch+6, y+pngLegendSwatch)
			y += pngLegendLine
		}
	}
}

// Image returns the PNG bytes of the current layout
func (h *PNGHandle) Image() []byte { return h.image }

// Viewport returns the viewport of the current layout
func (h *PNGHandle) Viewport() Viewport { return h.viewport }

// Layouts returns how many layout passes the handle has run
func (h *PNGHandle) Layouts() int { return h.layouts }

// WriteTo writes the PNG image
func (h *PNGHandle) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.image)
	return int64(n), err
}

// pngLegendWidth reserves roughly a third of the image for the legend
func pngLegendWidth(width int) int {
	lw := width / 3
	if lw < 120 {
		lw = 120
	}
	if lw > 360 {
		lw = 360
	}
	if lw > width/2 {
		lw = width / 2
	}
	return lw
}

// niceCeiling returns a round axis maximum with headroom above v for labels
func niceCeiling(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	v *= 1.15
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, step := range []float64{1, 2, 2.5, 5, 10} {
		if step*exp >= v {
			return step * exp
		}
	}
	return 10 * exp
}
