package charts

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertFits(t *testing.T, view string, vp Viewport) {
	t.Helper()
	lines := strings.Split(view, "\n")
	assert.LessOrEqual(t, len(lines), vp.Height)
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), vp.Width, "line %q", line)
	}
}

func TestTerminalRender(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Viewport = Viewport{Width: 100, Height: 20}

	r := NewTerminalRenderer()
	assert.Equal(t, "terminal", r.Name())
	h, err := r.Render(context.Background(), "issueChart", cfg)
	require.NoError(t, err)
	th := h.(*TerminalHandle)

	view := th.String()
	assert.Contains(t, view, "Build issues")
	assert.Contains(t, view, "Error (3)")
	assert.Contains(t, view, "Warning (10)")
	assert.Contains(t, view, "3 x Error")
	assert.Contains(t, view, "10 x Warning minor")
	assert.Contains(t, view, terminalBarRune)
	assertFits(t, view, cfg.Viewport)

	var buf bytes.Buffer
	_, err = th.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, view+"\n", buf.String())
}

func TestTerminalBarsScaleToLargest(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Viewport = Viewport{Width: 100, Height: 20}
	h, err := NewTerminalRenderer().Render(context.Background(), "issueChart", cfg)
	require.NoError(t, err)

	var errLine, warnLine string
	for _, line := range strings.Split(h.(*TerminalHandle).String(), "\n") {
		switch {
		case strings.Contains(line, "Error (3)"):
			errLine = line
		case strings.Contains(line, "Warning (10)"):
			warnLine = line
		}
	}
	require.NotEmpty(t, errLine)
	require.NotEmpty(t, warnLine)
	assert.Less(t, strings.Count(errLine, terminalBarRune), strings.Count(warnLine, terminalBarRune))
}

func TestTerminalRelayout(t *testing.T) {
	ctx := context.Background()
	cfg := sampleConfig(t)
	cfg.Viewport = Viewport{Width: 100, Height: 20}
	h, err := NewTerminalRenderer().Render(ctx, "issueChart", cfg)
	require.NoError(t, err)
	th := h.(*TerminalHandle)

	small := Viewport{Width: 30, Height: 2}
	require.NoError(t, th.Relayout(ctx, small))
	assert.Equal(t, 2, th.Layouts())
	assert.Equal(t, small, th.Viewport())
	assertFits(t, th.String(), small)

	require.NoError(t, th.Relayout(ctx, Viewport{Width: 100, Height: 20}))
	assert.Contains(t, th.String(), "10 x Warning minor")
}

func TestTerminalRenderEmpty(t *testing.T) {
	cfg := Normalize(nil).RenderConfig("", Viewport{Width: 40, Height: 5})
	h, err := NewTerminalRenderer().Render(context.Background(), "issueChart", cfg)
	require.NoError(t, err)
	assert.Equal(t, terminalEmptyText, h.(*TerminalHandle).String())
}

func TestTerminalRenderErrors(t *testing.T) {
	_, err := NewTerminalRenderer().Render(context.Background(), "", sampleConfig(t))
	assert.ErrorIs(t, err, ErrNoContainer)
}

func TestTerminalColor(t *testing.T) {
	assert.Equal(t, "#ff0000", terminalColor("#f00"))
	assert.Equal(t, "#00ff00", terminalColor("00ff00"))
	assert.Equal(t, "196", terminalColor("196"))
	assert.Equal(t, "red", terminalColor(" red "))
}
