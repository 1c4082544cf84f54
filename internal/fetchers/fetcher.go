package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tallychart/internal/models"
)

// Provider supplies the issue tally a chart is drawn from
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (*models.IssueDataset, error)
}

// NewProvider picks a provider for source: http(s) URLs are fetched over
// HTTP, .xlsx workbooks are read with the given sheet (empty means the first
// one) and everything else is treated as a JSON or YAML file.
func NewProvider(source, sheet string) (Provider, error) {
	if source == "" {
		return nil, fmt.Errorf("dataset source is empty")
	}

	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return NewHTTPProvider(source), nil
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".xlsx", ".xlsm":
		return NewXLSXProvider(source, sheet), nil
	case ".json", ".yaml", ".yml":
		return NewFileProvider(source), nil
	default:
		return nil, fmt.Errorf("unsupported dataset source %q: expected an http(s) URL or a .json, .yaml, .yml or .xlsx file", source)
	}
}

// decodeJSON parses the parallel-array wire document
func decodeJSON(data []byte) (*models.IssueDataset, error) {
	var raw models.RawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	return models.FromParallel(raw)
}

// decodeYAML parses the parallel-array wire document written as YAML
func decodeYAML(data []byte) (*models.IssueDataset, error) {
	var raw models.RawDataset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset YAML: %w", err)
	}
	return models.FromParallel(raw)
}

// StaticProvider serves a dataset held in memory
type StaticProvider struct {
	dataset *models.IssueDataset
}

// NewStaticProvider wraps ds
func NewStaticProvider(ds *models.IssueDataset) *StaticProvider {
	return &StaticProvider{dataset: ds}
}

// Name returns the provider name
func (p *StaticProvider) Name() string { return "static" }

// Fetch returns the wrapped dataset
func (p *StaticProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.dataset == nil {
		return nil, models.ErrEmptyDataset
	}
	return p.dataset, nil
}
