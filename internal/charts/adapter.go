package charts

import (
	"context"
	"fmt"
	"time"

	"tallychart/internal/logger"
	"tallychart/internal/models"
)

// DatasetProvider supplies the raw tally for a render pass
type DatasetProvider interface {
	Fetch(ctx context.Context) (*models.IssueDataset, error)
}

// AdapterOptions configures a ChartDataAdapter
type AdapterOptions struct {
	Container      string
	Viewport       Viewport
	ResizeDebounce time.Duration
	Logger         *logger.Logger
}

// Adapter owns one chart: it normalizes the dataset and renders it on ready,
// and lays the existing chart out again on every resize. An Adapter is not
// safe for concurrent use; Run serializes events for callers that have
// several event sources.
type Adapter struct {
	provider  DatasetProvider
	renderer  Renderer
	container string
	viewport  Viewport
	debounce  time.Duration
	log       *logger.Logger

	handle Handle
}

// NewAdapter creates an adapter bound to a single container
func NewAdapter(provider DatasetProvider, renderer Renderer, opts AdapterOptions) (*Adapter, error) {
	if opts.Container == "" {
		return nil, ErrNoContainer
	}
	if err := opts.Viewport.Validate(); err != nil {
		return nil, err
	}
	if opts.ResizeDebounce < 0 {
		return nil, fmt.Errorf("resize debounce must not be negative: %s", opts.ResizeDebounce)
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Adapter{
		provider:  provider,
		renderer:  renderer,
		container: opts.Container,
		viewport:  opts.Viewport,
		debounce:  opts.ResizeDebounce,
		log:       log.WithComponent("chart-adapter"),
	}, nil
}

// Container returns the container this adapter draws into
func (a *Adapter) Container() string {
	return a.container
}

// Handle returns the live chart, or nil before a successful Ready
func (a *Adapter) Handle() Handle {
	return a.handle
}

// Ready fetches the dataset, normalizes it and renders the chart once.
// A failed pass leaves the adapter without a handle.
func (a *Adapter) Ready(ctx context.Context) (Handle, error) {
	if a.handle != nil {
		return nil, ErrAlreadyRendered
	}

	ds, err := a.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	norm := Normalize(ds)
	cfg := norm.RenderConfig(ds.Title, a.viewport)

	h, err := a.renderer.Render(ctx, a.container, cfg)
	if err != nil {
		a.log.Error("Chart render failed", err, map[string]interface{}{
			"backend":   a.renderer.Name(),
			"container": a.container,
		})
		return nil, &RenderError{Backend: a.renderer.Name(), Container: a.container, Err: err}
	}
	a.handle = h

	a.log.Info("Chart rendered", map[string]interface{}{
		"backend":    a.renderer.Name(),
		"container":  a.container,
		"categories": norm.Len(),
		"viewport":   a.viewport.String(),
	})
	return h, nil
}

// Resize runs a full layout reset of the existing chart for the new viewport.
// It never fetches or normalizes data.
func (a *Adapter) Resize(ctx context.Context, vp Viewport) error {
	if a.handle == nil {
		return ErrNotRendered
	}
	if err := vp.Validate(); err != nil {
		return err
	}
	if err := a.handle.Relayout(ctx, vp); err != nil {
		return fmt.Errorf("failed to relayout %q to %s: %w", a.container, vp, err)
	}
	a.viewport = vp
	a.log.Debug("Chart relayout", map[string]interface{}{
		"container": a.container,
		"viewport":  vp.String(),
	})
	return nil
}

// EventKind distinguishes the two lifecycle hooks
type EventKind int

const (
	EventReady EventKind = iota
	EventResize
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification for an adapter
type Event struct {
	Kind     EventKind
	Viewport Viewport
}

// ReadyEvent returns the page-ready notification
func ReadyEvent() Event {
	return Event{Kind: EventReady}
}

// ResizeEvent returns a viewport-resize notification
func ResizeEvent(width, height int) Event {
	return Event{Kind: EventResize, Viewport: Viewport{Width: width, Height: height}}
}

// Dispatch handles a single event to completion
func (a *Adapter) Dispatch(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventReady:
		_, err := a.Ready(ctx)
		return err
	case EventResize:
		return a.Resize(ctx, ev.Viewport)
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
}

// Run handles events one at a time until the channel closes or ctx is done.
// With a positive debounce, bursts of resize events collapse into one
// relayout for the last viewport; a pending relayout is flushed when the
// channel closes.
func (a *Adapter) Run(ctx context.Context, events <-chan Event) error {
	var (
		pending *Viewport
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				if pending != nil {
					return a.Resize(ctx, *pending)
				}
				return nil
			}

			if ev.Kind == EventResize && a.debounce > 0 {
				vp := ev.Viewport
				pending = &vp
				if timer == nil {
					timer = time.NewTimer(a.debounce)
				} else {
					timer.Stop()
					timer.Reset(a.debounce)
				}
				fire = timer.C
				continue
			}

			if err := a.Dispatch(ctx, ev); err != nil {
				return fmt.Errorf("%s event: %w", ev.Kind, err)
			}

		case <-fire:
			fire = nil
			if pending == nil {
				continue
			}
			vp := *pending
			pending = nil
			if err := a.Resize(ctx, vp); err != nil {
				return fmt.Errorf("%s event: %w", EventResize, err)
			}
		}
	}
}
