package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Supported chart backends
const (
	BackendECharts  = "echarts"
	BackendPNG      = "png"
	BackendTerminal = "terminal"
)

// Supported output modes for rendered artifacts
const (
	OutputLocal = "local"
	OutputGCS   = "gcs"
)

// Config holds all configuration for the tally chart service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8981"`

	// Dataset provider: file path (.json/.yaml/.yml/.xlsx) or http(s) URL
	DatasetSource string `env:"DATASET_SOURCE,default=./tally.json"`
	DatasetSheet  string `env:"DATASET_SHEET"`
	MockupMode    bool   `env:"MOCKUP_MODE,default=false"`

	// Mockup mode serves <MOCK_DATA_DIR>/data/tally.json, or the built-in
	// sample tally when MOCK_DATA_DIR is empty
	MockDataDir string `env:"MOCK_DATA_DIR"`

	// Chart configuration
	Backend           string        `env:"CHART_BACKEND,default=echarts"`
	ContainerID       string        `env:"CHART_CONTAINER,default=issueChart"`
	ChartWidth        int           `env:"CHART_WIDTH,default=900"`
	ChartHeight       int           `env:"CHART_HEIGHT,default=400"`
	ResizeDebounce    time.Duration `env:"RESIZE_DEBOUNCE,default=0s"`
	EChartsAssetsHost string        `env:"ECHARTS_ASSETS_HOST,default=https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/"`

	// Output storage for rendered pages and images
	OutputMode      string `env:"OUTPUT_MODE,default=local"`
	LocalReportsDir string `env:"LOCAL_REPORTS_DIR,default=./reports"`
	GCPProjectID    string `env:"GCP_PROJECT_ID"`
	GCSBucket       string `env:"GCS_BUCKET"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=30s"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings and mode-specific requirements
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendECharts, BackendPNG, BackendTerminal:
	default:
		return fmt.Errorf("unsupported chart backend %q (want echarts, png or terminal)", c.Backend)
	}

	switch c.OutputMode {
	case OutputLocal:
	case OutputGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when OUTPUT_MODE=gcs")
		}
	default:
		return fmt.Errorf("unsupported output mode %q (want local or gcs)", c.OutputMode)
	}

	if c.ContainerID == "" {
		return fmt.Errorf("CHART_CONTAINER must not be empty")
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	if c.ResizeDebounce < 0 {
		return fmt.Errorf("RESIZE_DEBOUNCE must not be negative")
	}
	if !c.MockupMode && c.DatasetSource == "" {
		return fmt.Errorf("DATASET_SOURCE is required unless MOCKUP_MODE is enabled")
	}
	return nil
}
