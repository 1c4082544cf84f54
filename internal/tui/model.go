package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tallychart/internal/charts"
)

var (
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// footerLines is the height reserved below the chart
const footerLines = 1

type readyMsg struct{}

// Model shows one terminal chart. Page-ready is the first message after
// start; every window size change after that is a relayout.
type Model struct {
	ctx     context.Context
	adapter *charts.Adapter

	pending *charts.Viewport
	err     error
}

// New creates a model around an adapter that uses the terminal backend
func New(ctx context.Context, adapter *charts.Adapter) Model {
	return Model{ctx: ctx, adapter: adapter}
}

// Run starts the interactive program and blocks until the user quits
func Run(ctx context.Context, adapter *charts.Adapter) error {
	program := tea.NewProgram(New(ctx, adapter), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}
	return final.(Model).Err()
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return readyMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case readyMsg:
		if _, err := m.adapter.Ready(m.ctx); err != nil {
			m.err = err
			return m, nil
		}
		// a size that arrived before the chart existed is applied now
		if m.pending != nil {
			vp := *m.pending
			m.pending = nil
			m.resize(vp)
		}

	case tea.WindowSizeMsg:
		vp := charts.Viewport{Width: msg.Width, Height: msg.Height - footerLines}
		if vp.Validate() != nil {
			return m, nil
		}
		if m.adapter.Handle() == nil {
			m.pending = &vp
			return m, nil
		}
		m.resize(vp)
	}
	return m, nil
}

func (m *Model) resize(vp charts.Viewport) {
	if err := m.adapter.Resize(m.ctx, vp); err != nil && !errors.Is(err, charts.ErrNotRendered) {
		m.err = err
	}
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("error: "+m.err.Error()) + "\n" + footerStyle.Render("q to quit")
	}
	h := m.adapter.Handle()
	if h == nil {
		return "Loading chart..."
	}
	view := ""
	if th, ok := h.(interface{ String() string }); ok {
		view = th.String()
	}
	return view + "\n" + footerStyle.Render("q to quit")
}

// Err returns the error that stopped the chart, if any
func (m Model) Err() error {
	return m.err
}
