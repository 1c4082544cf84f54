package storage

import (
	"context"
	"fmt"

	"tallychart/internal/config"
)

// OutputMode selects where rendered artifacts go
type OutputMode string

const (
	OutputLocal OutputMode = config.OutputLocal
	OutputGCS   OutputMode = config.OutputGCS
)

// NewStorageClient creates a storage client based on output mode and configuration
func NewStorageClient(ctx context.Context, mode OutputMode, cfg *config.Config) (StorageClient, error) {
	switch mode {
	case OutputLocal:
		reportsDir := cfg.LocalReportsDir
		if reportsDir == "" {
			reportsDir = "reports"
		}

		localClient, err := NewLocalStorageClient(reportsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage client: %w", err)
		}
		return localClient, nil

	case OutputGCS:
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS bucket is not configured")
		}
		gcsClient, err := NewGCSClient(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
		}
		return gcsClient, nil

	default:
		return nil, fmt.Errorf("unsupported output mode: %s", mode)
	}
}
