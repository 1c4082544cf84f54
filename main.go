package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tallychart/internal/charts"
	"tallychart/internal/config"
	"tallychart/internal/logger"
	"tallychart/internal/reports"
	"tallychart/internal/server"
	"tallychart/internal/storage"
	"tallychart/internal/tui"
)

// renderFlags holds the render command's flags
type renderFlags struct {
	output  string
	backend string
	width   int
	height  int
	resizes []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tallychart",
		Short:         "Render issue tallies as labeled bar charts",
		Version:       config.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart page, PNG rendering and stored reports over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	rf := &renderFlags{}
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart once and write it to a file or stdout",
		Long: `render draws the configured dataset with one backend. Each --resize
replays a viewport resize against the rendered chart before it is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, rf)
		},
	}
	renderCmd.Flags().StringVarP(&rf.output, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&rf.backend, "backend", "", "Chart backend: echarts, png or terminal (default: CHART_BACKEND)")
	renderCmd.Flags().IntVar(&rf.width, "width", 0, "Initial viewport width (default: CHART_WIDTH)")
	renderCmd.Flags().IntVar(&rf.height, "height", 0, "Initial viewport height (default: CHART_HEIGHT)")
	renderCmd.Flags().StringArrayVar(&rf.resizes, "resize", nil, "Viewport resize to replay, as WIDTHxHEIGHT (repeatable)")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the page and PNG and store them as a report",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the chart in the terminal, redrawn as the window resizes",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}

	rootCmd.AddCommand(serveCmd, renderCmd, generateCmd, showCmd)
	return rootCmd
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logger.Info("Starting tally chart service", map[string]interface{}{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"version":     config.GetVersion(),
	})

	provider, err := server.NewDatasetProvider(cfg)
	if err != nil {
		return err
	}
	store, err := storage.NewStorageClient(ctx, storage.OutputMode(cfg.OutputMode), cfg)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, provider, store)
	defer srv.Close()

	return srv.ListenAndServe(ctx)
}

// parseViewport reads WIDTHxHEIGHT
func parseViewport(s string) (charts.Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return charts.Viewport{}, fmt.Errorf("invalid viewport %q: want WIDTHxHEIGHT", s)
	}
	wi, errW := strconv.Atoi(w)
	hi, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return charts.Viewport{}, fmt.Errorf("invalid viewport %q: want WIDTHxHEIGHT", s)
	}
	vp := charts.Viewport{Width: wi, Height: hi}
	return vp, vp.Validate()
}

func runRender(cmd *cobra.Command, rf *renderFlags) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	backend := rf.backend
	if backend == "" {
		backend = cfg.Backend
	}
	vp := charts.Viewport{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	if rf.width > 0 {
		vp.Width = rf.width
	}
	if rf.height > 0 {
		vp.Height = rf.height
	}

	resizes := make([]charts.Viewport, 0, len(rf.resizes))
	for _, r := range rf.resizes {
		next, err := parseViewport(r)
		if err != nil {
			return err
		}
		resizes = append(resizes, next)
	}

	provider, err := server.NewDatasetProvider(cfg)
	if err != nil {
		return err
	}
	renderer, err := charts.NewRenderer(backend, charts.RendererOptions{EChartsAssetsHost: cfg.EChartsAssetsHost})
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if rf.output != "" && rf.output != "-" {
		f, err := os.Create(rf.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return renderChart(ctx, provider, renderer, charts.AdapterOptions{
		Container:      cfg.ContainerID,
		Viewport:       vp,
		ResizeDebounce: cfg.ResizeDebounce,
	}, resizes, out)
}

// renderChart feeds one ready event and then each resize through the adapter
// and writes the final layout to w.
func renderChart(ctx context.Context, provider charts.DatasetProvider, renderer charts.Renderer, opts charts.AdapterOptions, resizes []charts.Viewport, w io.Writer) error {
	adapter, err := charts.NewAdapter(provider, renderer, opts)
	if err != nil {
		return err
	}

	events := make(chan charts.Event, len(resizes)+1)
	events <- charts.ReadyEvent()
	for _, vp := range resizes {
		events <- charts.ResizeEvent(vp.Width, vp.Height)
	}
	close(events)

	if err := adapter.Run(ctx, events); err != nil {
		return err
	}
	if _, err := adapter.Handle().WriteTo(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	provider, err := server.NewDatasetProvider(cfg)
	if err != nil {
		return err
	}
	store, err := storage.NewStorageClient(ctx, storage.OutputMode(cfg.OutputMode), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := reports.NewGenerator(provider, server.ReportOptions(cfg), nil).Generate(ctx, store)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	// log lines would corrupt the screen
	quiet := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	logger.SetGlobalLogger(quiet)

	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 1 {
		w, h = 80, 24
	}

	provider, err := server.NewDatasetProvider(cfg)
	if err != nil {
		return err
	}
	adapter, err := charts.NewAdapter(provider, charts.NewTerminalRenderer(), charts.AdapterOptions{
		Container: "terminal",
		Viewport:  charts.Viewport{Width: w, Height: h - 1},
		Logger:    quiet,
	})
	if err != nil {
		return err
	}

	return tui.Run(ctx, adapter)
}
