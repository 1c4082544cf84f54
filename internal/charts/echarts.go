package charts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// legendGridRight reserves the trailing side of the canvas for the legend
const legendGridRight = "32%"

// EChartsRenderer renders the tally as an embeddable go-echarts bar chart
type EChartsRenderer struct {
	assetsHost string
}

// NewEChartsRenderer creates an echarts backend; assetsHost may be empty
func NewEChartsRenderer(assetsHost string) *EChartsRenderer {
	return &EChartsRenderer{assetsHost: assetsHost}
}

// Name returns the backend name
func (r *EChartsRenderer) Name() string { return "echarts" }

// AssetsHost returns where pages should load echarts from
func (r *EChartsRenderer) AssetsHost() string { return r.assetsHost }

// Render builds the bar chart and lays it out for the initial viewport
func (r *EChartsRenderer) Render(ctx context.Context, container string, cfg RenderConfig) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if container == "" {
		return nil, ErrNoContainer
	}
	if !validElementID(container) {
		return nil, fmt.Errorf("%w: %q is not a usable element id", ErrInvalidContainer, container)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &EChartsHandle{
		container:  container,
		title:      cfg.Title,
		assetsHost: r.assetsHost,
		bar:        buildBar(cfg),
	}
	if err := h.layout(cfg.Viewport); err != nil {
		return nil, err
	}
	return h, nil
}

// buildBar maps every category to its own single-point series so each bar
// carries its own color, on-bar label and legend entry.
func buildBar(cfg RenderConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: cfg.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "vertical",
			Right:  "1%",
			Top:    "middle",
			Data:   cfg.LegendEntries,
		}),
		charts.WithGridOpts(opts.Grid{Left: "3%", Right: legendGridRight, Bottom: "6%"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	if len(cfg.Colors) > 0 {
		// go-echarts reorders the palette slice in place
		bar.SetGlobalOptions(charts.WithColorsOpts(opts.Colors(append([]string(nil), cfg.Colors...))))
	}

	// one blank category; identity is carried by point labels and legend
	bar.SetXAxis([]string{""})

	for i, values := range cfg.Series {
		data := make([]opts.BarData, 0, len(values))
		for _, v := range values {
			// the data item name is what the "{b}" label formatter prints
			data = append(data, opts.BarData{Name: cfg.PointLabels[i], Value: v})
		}
		bar.AddSeries(cfg.LegendEntries[i], data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.Colors[i]}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Formatter: "{b}"}),
		)
	}
	return bar
}

// EChartsHandle is a rendered echarts chart bound to one container
type EChartsHandle struct {
	container  string
	title      string
	assetsHost string
	bar        *charts.Bar

	viewport Viewport
	option   []byte
	snippet  ChartSnippet
	layouts  int
}

// Container returns the element id the chart is drawn into
func (h *EChartsHandle) Container() string { return h.container }

// Relayout rebuilds the container geometry and option document for the new
// viewport from the chart captured at render time.
func (h *EChartsHandle) Relayout(ctx context.Context, vp Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.layout(vp)
}

func (h *EChartsHandle) layout(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}

	h.bar.SetGlobalOptions(charts.WithInitializationOpts(opts.Initialization{
		ChartID:    h.container,
		AssetsHost: h.assetsHost,
		Width:      fmt.Sprintf("%dpx", vp.Width),
		Height:     fmt.Sprintf("%dpx", vp.Height),
	}))
	h.bar.Validate()

	optJSON, err := json.Marshal(h.bar.JSON())
	if err != nil {
		return fmt.Errorf("failed to marshal echarts option: %w", err)
	}

	div := snippetDiv(h.container, vp)
	script := snippetScript(h.container, optJSON)

	h.viewport = vp
	h.option = optJSON
	h.snippet = ChartSnippet{
		ID:     h.container,
		Title:  h.title,
		Div:    div,
		Script: script,
		HTML:   div + "\n" + script,
	}
	h.layouts++
	return nil
}

// Snippet returns the embeddable div and script for the current layout
func (h *EChartsHandle) Snippet() ChartSnippet { return h.snippet }

// Option returns the echarts option document as JSON
func (h *EChartsHandle) Option() []byte { return h.option }

// Viewport returns the viewport of the current layout
func (h *EChartsHandle) Viewport() Viewport { return h.viewport }

// Layouts returns how many layout passes the handle has run
func (h *EChartsHandle) Layouts() int { return h.layouts }

// WriteTo writes the snippet HTML
func (h *EChartsHandle) WriteTo(w io.Writer) (int64, error) {
	n, err := io.Copy(w, strings.NewReader(h.snippet.HTML))
	return n, err
}
