package charts

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNoContainer is returned when an adapter or renderer gets an empty container name.
	ErrNoContainer = errors.New("no chart container")

	// ErrInvalidContainer is returned when a backend cannot address the named container.
	ErrInvalidContainer = errors.New("invalid chart container")

	// ErrNotRendered is returned when a relayout is requested before the first render.
	ErrNotRendered = errors.New("chart has not been rendered")

	// ErrAlreadyRendered is returned when ready fires a second time for one adapter.
	ErrAlreadyRendered = errors.New("chart already rendered")

	// ErrMisalignedConfig is returned when series, colors, labels and legend differ in length.
	ErrMisalignedConfig = errors.New("misaligned render configuration")

	// ErrInvalidViewport is returned for non-positive viewport dimensions.
	ErrInvalidViewport = errors.New("invalid viewport")
)

// Viewport is the size available to the chart: pixels for graphical
// backends, cells for the terminal backend.
type Viewport struct {
	Width  int
	Height int
}

// Validate checks that both dimensions are positive
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, v.Width, v.Height)
	}
	return nil
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// RenderConfig is everything a backend needs to draw the tally chart.
// Series i is drawn with Colors[i], overlaid with PointLabels[i] and listed
// in the legend as LegendEntries[i].
type RenderConfig struct {
	Title         string
	Series        [][]float64
	Colors        []string
	PointLabels   []string
	LegendEntries []string
	Viewport      Viewport
}

// Validate checks index alignment and the initial viewport
func (c RenderConfig) Validate() error {
	n := len(c.Series)
	if len(c.Colors) != n || len(c.PointLabels) != n || len(c.LegendEntries) != n {
		return fmt.Errorf("%w: series=%d colors=%d labels=%d legend=%d",
			ErrMisalignedConfig, n, len(c.Colors), len(c.PointLabels), len(c.LegendEntries))
	}
	return c.Viewport.Validate()
}

// Renderer draws a tally chart into one named container
type Renderer interface {
	Name() string
	Render(ctx context.Context, container string, cfg RenderConfig) (Handle, error)
}

// Handle is one live chart instance. Relayout performs a full layout reset
// against the data captured at render time.
type Handle interface {
	io.WriterTo
	Container() string
	Relayout(ctx context.Context, vp Viewport) error
}

// RenderError reports a failed render pass
type RenderError struct {
	Backend   string
	Container string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s chart into %q: %v", e.Backend, e.Container, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// RendererOptions carries backend-specific settings
type RendererOptions struct {
	// EChartsAssetsHost is where the page loads echarts.min.js from
	EChartsAssetsHost string
}

// NewRenderer returns the backend registered under name
func NewRenderer(name string, opts RendererOptions) (Renderer, error) {
	switch name {
	case "echarts":
		return NewEChartsRenderer(opts.EChartsAssetsHost), nil
	case "png":
		return NewPNGRenderer(), nil
	case "terminal":
		return NewTerminalRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported chart backend: %s", name)
	}
}
