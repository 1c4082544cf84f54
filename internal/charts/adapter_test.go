package charts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallychart/internal/logger"
	"tallychart/internal/models"
)

type countingProvider struct {
	ds    *models.IssueDataset
	err   error
	calls int
}

func (p *countingProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	p.calls++
	return p.ds, p.err
}

type recordingHandle struct {
	container string
	layouts   []Viewport
	err       error
}

func (h *recordingHandle) Container() string { return h.container }

func (h *recordingHandle) Relayout(ctx context.Context, vp Viewport) error {
	if h.err != nil {
		return h.err
	}
	h.layouts = append(h.layouts, vp)
	return nil
}

func (h *recordingHandle) WriteTo(w io.Writer) (int64, error) { return 0, nil }

type recordingRenderer struct {
	renders []RenderConfig
	handle  *recordingHandle
	err     error
}

func (r *recordingRenderer) Name() string { return "recording" }

func (r *recordingRenderer) Render(ctx context.Context, container string, cfg RenderConfig) (Handle, error) {
	r.renders = append(r.renders, cfg)
	if r.err != nil {
		return nil, r.err
	}
	r.handle = &recordingHandle{container: container}
	return r.handle, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSONFormat, Output: &bytes.Buffer{}})
}

func newTestAdapter(t *testing.T, p DatasetProvider, r Renderer, debounce time.Duration) *Adapter {
	t.Helper()
	a, err := NewAdapter(p, r, AdapterOptions{
		Container:      "issueChart",
		Viewport:       Viewport{Width: 900, Height: 400},
		ResizeDebounce: debounce,
		Logger:         quietLogger(),
	})
	require.NoError(t, err)
	return a
}

func TestNewAdapterValidation(t *testing.T) {
	p := &countingProvider{}
	r := &recordingRenderer{}

	_, err := NewAdapter(p, r, AdapterOptions{Viewport: Viewport{Width: 1, Height: 1}})
	assert.ErrorIs(t, err, ErrNoContainer)

	_, err = NewAdapter(p, r, AdapterOptions{Container: "c"})
	assert.ErrorIs(t, err, ErrInvalidViewport)

	_, err = NewAdapter(p, r, AdapterOptions{Container: "c", Viewport: Viewport{Width: 1, Height: 1}, ResizeDebounce: -time.Second})
	assert.Error(t, err)
}

func TestAdapterReadyRendersOnce(t *testing.T) {
	ctx := context.Background()
	p := &countingProvider{ds: sampleDataset(t)}
	r := &recordingRenderer{}
	a := newTestAdapter(t, p, r, 0)

	h, err := a.Ready(ctx)
	require.NoError(t, err)
	assert.Same(t, r.handle, h)
	assert.Same(t, h, a.Handle())
	assert.Equal(t, "issueChart", h.Container())

	require.Len(t, r.renders, 1)
	cfg := r.renders[0]
	assert.Equal(t, "Build issues", cfg.Title)
	assert.Equal(t, [][]float64{{3}, {10}}, cfg.Series)
	assert.Equal(t, []string{"#f00", "#ff0"}, cfg.Colors)
	assert.Equal(t, []string{"Error (3)", "Warning (10)"}, cfg.PointLabels)
	assert.Equal(t, []string{"3 x Error", "10 x Warning minor"}, cfg.LegendEntries)
	assert.Equal(t, Viewport{Width: 900, Height: 400}, cfg.Viewport)

	_, err = a.Ready(ctx)
	assert.ErrorIs(t, err, ErrAlreadyRendered)
	assert.Len(t, r.renders, 1)
	assert.Equal(t, 1, p.calls)
}

func TestAdapterReadyEmptyDataset(t *testing.T) {
	p := &countingProvider{ds: &models.IssueDataset{Title: "Nothing"}}
	r := &recordingRenderer{}
	a := newTestAdapter(t, p, r, 0)

	_, err := a.Ready(context.Background())
	require.NoError(t, err)
	require.Len(t, r.renders, 1)
	assert.Empty(t, r.renders[0].Series)
	assert.Empty(t, r.renders[0].LegendEntries)
}

func TestAdapterReadyFailures(t *testing.T) {
	fetchErr := errors.New("source unavailable")
	renderErr := errors.New("backend exploded")

	tests := []struct {
		name     string
		provider *countingProvider
		renderer *recordingRenderer
		want     error
	}{
		{"fetch error", &countingProvider{err: fetchErr}, &recordingRenderer{}, fetchErr},
		{"nil dataset", &countingProvider{}, &recordingRenderer{}, models.ErrEmptyDataset},
		{"negative count", &countingProvider{ds: &models.IssueDataset{Categories: []models.Category{{Name: "x", Count: -1}}}}, &recordingRenderer{}, models.ErrInvalidCount},
		{"render error", &countingProvider{ds: &models.IssueDataset{}}, &recordingRenderer{err: renderErr}, renderErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, tt.provider, tt.renderer, 0)
			_, err := a.Ready(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, a.Handle())
		})
	}
}

func TestAdapterRenderErrorType(t *testing.T) {
	a := newTestAdapter(t, &countingProvider{ds: &models.IssueDataset{}}, &recordingRenderer{err: errors.New("boom")}, 0)
	_, err := a.Ready(context.Background())

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "recording", re.Backend)
	assert.Equal(t, "issueChart", re.Container)
	assert.Contains(t, re.Error(), "boom")
}

func TestAdapterResizeBeforeReady(t *testing.T) {
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, &recordingRenderer{}, 0)
	err := a.Resize(context.Background(), Viewport{Width: 100, Height: 100})
	assert.ErrorIs(t, err, ErrNotRendered)
}

func TestAdapterResizeReusesHandle(t *testing.T) {
	ctx := context.Background()
	p := &countingProvider{ds: sampleDataset(t)}
	r := &recordingRenderer{}
	a := newTestAdapter(t, p, r, 0)

	_, err := a.Ready(ctx)
	require.NoError(t, err)

	require.NoError(t, a.Resize(ctx, Viewport{Width: 640, Height: 360}))
	require.NoError(t, a.Resize(ctx, Viewport{Width: 320, Height: 200}))

	assert.Equal(t, []Viewport{{640, 360}, {320, 200}}, r.handle.layouts)
	assert.Len(t, r.renders, 1)
	assert.Equal(t, 1, p.calls)
}

func TestAdapterResizeInvalidViewport(t *testing.T) {
	ctx := context.Background()
	r := &recordingRenderer{}
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, r, 0)
	_, err := a.Ready(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, a.Resize(ctx, Viewport{Width: 0, Height: 10}), ErrInvalidViewport)
	assert.Empty(t, r.handle.layouts)
}

func TestAdapterResizeRelayoutError(t *testing.T) {
	ctx := context.Background()
	r := &recordingRenderer{}
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, r, 0)
	_, err := a.Ready(ctx)
	require.NoError(t, err)

	relayoutErr := errors.New("detached")
	r.handle.err = relayoutErr
	assert.ErrorIs(t, a.Resize(ctx, Viewport{Width: 10, Height: 10}), relayoutErr)
}

func TestAdapterDispatch(t *testing.T) {
	ctx := context.Background()
	r := &recordingRenderer{}
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, r, 0)

	require.NoError(t, a.Dispatch(ctx, ReadyEvent()))
	require.NoError(t, a.Dispatch(ctx, ResizeEvent(500, 250)))
	assert.Error(t, a.Dispatch(ctx, Event{Kind: EventKind(99)}))

	assert.Equal(t, []Viewport{{500, 250}}, r.handle.layouts)
	assert.Equal(t, "ready", EventReady.String())
	assert.Equal(t, "resize", EventResize.String())
	assert.Equal(t, "unknown", EventKind(99).String())
}

func TestAdapterRunWithoutDebounce(t *testing.T) {
	p := &countingProvider{ds: sampleDataset(t)}
	r := &recordingRenderer{}
	a := newTestAdapter(t, p, r, 0)

	events := make(chan Event, 3)
	events <- ReadyEvent()
	events <- ResizeEvent(640, 360)
	events <- ResizeEvent(320, 200)
	close(events)

	require.NoError(t, a.Run(context.Background(), events))
	assert.Equal(t, []Viewport{{640, 360}, {320, 200}}, r.handle.layouts)
	assert.Len(t, r.renders, 1)
	assert.Equal(t, 1, p.calls)
}

func TestAdapterRunDebounceCoalesces(t *testing.T) {
	r := &recordingRenderer{}
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, r, time.Hour)

	events := make(chan Event, 4)
	events <- ReadyEvent()
	events <- ResizeEvent(640, 360)
	events <- ResizeEvent(500, 300)
	events <- ResizeEvent(320, 200)
	close(events)

	require.NoError(t, a.Run(context.Background(), events))
	assert.Equal(t, []Viewport{{320, 200}}, r.handle.layouts)
}

func TestAdapterRunDebounceTimerFires(t *testing.T) {
	r := &recordingRenderer{}
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, r, 5*time.Millisecond)

	events := make(chan Event)
	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background(), events) }()

	events <- ReadyEvent()
	events <- ResizeEvent(640, 360)
	events <- ResizeEvent(320, 200)
	time.Sleep(50 * time.Millisecond)
	events <- ResizeEvent(200, 100)
	time.Sleep(50 * time.Millisecond)
	close(events)

	require.NoError(t, <-done)
	assert.Equal(t, []Viewport{{320, 200}, {200, 100}}, r.handle.layouts)
}

func TestAdapterRunStopsOnError(t *testing.T) {
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, &recordingRenderer{}, 0)

	events := make(chan Event, 1)
	events <- ResizeEvent(10, 10)

	err := a.Run(context.Background(), events)
	assert.ErrorIs(t, err, ErrNotRendered)
	assert.Contains(t, err.Error(), "resize event")
}

func TestAdapterRunContextCancel(t *testing.T) {
	a := newTestAdapter(t, &countingProvider{ds: sampleDataset(t)}, &recordingRenderer{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Run(ctx, make(chan Event))
	assert.ErrorIs(t, err, context.Canceled)
}
