package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tallychart/internal/charts"
	"tallychart/internal/config"
	"tallychart/internal/fetchers"
	"tallychart/internal/logger"
	"tallychart/internal/mocks"
	"tallychart/internal/reports"
	"tallychart/internal/storage"
)

// LocalRunner generates a report into a local directory without GCS
type LocalRunner struct {
	provider  charts.DatasetProvider
	store     *storage.LocalStorageClient
	generator *reports.Generator
}

// NewLocalRunner uses source as the dataset, or the built-in sample tally
// when source is empty.
func NewLocalRunner(source, sheet, outDir string) (*LocalRunner, error) {
	var provider charts.DatasetProvider = mocks.NewMockService("")
	if source != "" {
		p, err := fetchers.NewProvider(source, sheet)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	store, err := storage.NewLocalStorageClient(outDir)
	if err != nil {
		return nil, err
	}

	opts := reports.Options{
		Container: "issueChart",
		Viewport:  charts.Viewport{Width: 900, Height: 400},
	}
	return &LocalRunner{
		provider:  provider,
		store:     store,
		generator: reports.NewGenerator(provider, opts, logger.GetGlobalLogger().WithComponent("local-runner")),
	}, nil
}

// Run generates one report and writes a JSON summary to w
func (lr *LocalRunner) Run(ctx context.Context, w io.Writer) (*reports.Result, error) {
	log.Println("Generating local report...")

	result, err := lr.generator.Generate(ctx, lr.store)
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	pagePath := filepath.Join(lr.store.BaseDir(), filepath.FromSlash(result.PagePath))
	abs, err := filepath.Abs(pagePath)
	if err != nil {
		abs = pagePath
	}

	summary := map[string]interface{}{
		"status":     "success",
		"report_id":  result.ID,
		"report_dir": filepath.Join(lr.store.BaseDir(), filepath.FromSlash(result.FolderPath)),
		"categories": result.Categories,
		"duration":   result.Duration,
		"timestamp":  result.GeneratedAt.Format(time.RFC3339),
		"version":    config.GetVersion(),
	}
	summaryJSON, _ := json.MarshalIndent(summary, "", "  ")
	if _, err := fmt.Fprintln(w, string(summaryJSON)); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}

	log.Printf("Open in browser: file://%s", abs)
	return result, nil
}

func main() {
	var source, sheet, outDir string

	cmd := &cobra.Command{
		Use:   "local-runner",
		Short: "Generate a tally report into a local directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := NewLocalRunner(source, sheet, outDir)
			if err != nil {
				return fmt.Errorf("setup failed: %w", err)
			}
			_, err = runner.Run(cmd.Context(), os.Stdout)
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Dataset source (.json, .yaml, .xlsx or URL); empty uses the sample tally")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for .xlsx sources")
	cmd.Flags().StringVar(&outDir, "out", "reports", "Directory reports are written to")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}
