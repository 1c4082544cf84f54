package storage

import (
	"context"
	"time"
)

// StorageClient stores rendered chart artifacts. Files written with the same
// timestamp share one report folder.
type StorageClient interface {
	// Close closes the storage client
	Close() error

	// StoreFile stores a file in the report folder for timestamp and returns
	// its path relative to the storage root
	StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) (string, error)

	// GetFile retrieves a file by its path relative to the storage root
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// FileExists checks if a file exists at the specified path
	FileExists(ctx context.Context, filePath string) (bool, error)

	// ListReports lists report pages, newest first; limit <= 0 means all
	ListReports(ctx context.Context, limit int) ([]string, error)
}
