package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tallychart/internal/models"
)

// mockDatasetFile is looked up under <mocksDir>/data
const mockDatasetFile = "tally.json"

// MockService serves a canned tally for mockup mode and local testing
type MockService struct {
	mocksDir string
}

// NewMockService creates a new mock service reading <mocksDir>/data/tally.json.
// An empty mocksDir means only the built-in sample is used.
func NewMockService(mocksDir string) *MockService {
	dir := ""
	if mocksDir != "" {
		dir = filepath.Join(mocksDir, "data")
	}
	return &MockService{
		mocksDir: dir,
	}
}

// DataDir returns the directory the mock tally is read from; empty when the
// built-in sample is served
func (m *MockService) DataDir() string { return m.mocksDir }

// Name returns the provider name
func (m *MockService) Name() string { return "mock" }

// Fetch makes the mock service usable as a dataset provider
func (m *MockService) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.LoadMockData()
}

// LoadMockData loads the mock tally file, or the built-in sample when no
// mocks directory is configured.
func (m *MockService) LoadMockData() (*models.IssueDataset, error) {
	if m.mocksDir == "" {
		return SampleDataset(), nil
	}

	var raw models.RawDataset
	if _, err := m.loadTypedJSONFile(mockDatasetFile, &raw); err != nil {
		return nil, fmt.Errorf("failed to load mock dataset: %w", err)
	}

	return models.FromParallel(raw)
}

// loadTypedJSONFile loads a JSON file and unmarshals it into the provided type
func (m *MockService) loadTypedJSONFile(filename string, target interface{}) (interface{}, error) {
	filePath := filepath.Join(m.mocksDir, filename)
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, target); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file %s: %w", filename, err)
	}

	return target, nil
}

// SampleDataset returns a small representative tally
func SampleDataset() *models.IssueDataset {
	return &models.IssueDataset{
		Title: "Issues by severity",
		Categories: []models.Category{
			{Name: "Error", Color: "#d9534f", Count: 3, Description: "build breaking"},
			{Name: "Warning", Color: "#f0ad4e", Count: 10, Description: "minor"},
			{Name: "Note", Color: "#5bc0de", Count: 24},
			{Name: "Info", Color: "#5cb85c", Count: 7},
		},
	}
}
