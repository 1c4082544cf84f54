package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LocalStorageClient handles local file system storage operations
type LocalStorageClient struct {
	baseDir string
}

// NewLocalStorageClient creates a new local storage client
func NewLocalStorageClient(baseDir string) (*LocalStorageClient, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}

	return &LocalStorageClient{
		baseDir: baseDir,
	}, nil
}

// BaseDir returns the storage root
func (l *LocalStorageClient) BaseDir() string {
	return l.baseDir
}

// Close is a no-op for local storage (implements same interface as GCSClient)
func (l *LocalStorageClient) Close() error {
	return nil
}

// StoreFile writes a file into the report folder for timestamp
func (l *LocalStorageClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	relPath, err := reportFilePath(filename, timestamp)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(l.baseDir, filepath.FromSlash(relPath))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	return relPath, nil
}

// GetFile retrieves a file relative to the storage root
func (l *LocalStorageClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	relPath, err := CleanPath(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", relPath, err)
	}
	return data, nil
}

// FileExists checks if a regular file exists relative to the storage root
func (l *LocalStorageClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	relPath, err := CleanPath(filePath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(filepath.Join(l.baseDir, filepath.FromSlash(relPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", relPath, err)
	}
	return !info.IsDir(), nil
}

// ListReports lists report pages under the storage root, newest first
func (l *LocalStorageClient) ListReports(ctx context.Context, limit int) ([]string, error) {
	var reportPaths []string

	err := filepath.WalkDir(l.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors and continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ReportPageName {
			relPath, relErr := filepath.Rel(l.baseDir, p)
			if relErr == nil && relPath != ReportPageName {
				reportPaths = append(reportPaths, filepath.ToSlash(relPath))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk reports directory: %w", err)
	}

	return newestFirst(reportPaths, limit), nil
}
