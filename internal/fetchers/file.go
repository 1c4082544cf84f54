package fetchers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tallychart/internal/models"
)

// FileProvider reads the tally from a local JSON or YAML file
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for path
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Name returns the provider name
func (p *FileProvider) Name() string { return "file" }

// Path returns the file the provider reads
func (p *FileProvider) Path() string { return p.path }

// Fetch reads and parses the file on every call so edits are picked up
func (p *FileProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", p.path, err)
	}

	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}
