package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallychart/internal/mocks"
)

func TestLocalRunnerSampleReport(t *testing.T) {
	dir := t.TempDir()
	runner, err := NewLocalRunner("", "", dir)
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, mocks.SampleDataset().Len(), result.Categories)
	for _, rel := range []string{result.PagePath, result.ImagePath} {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.Greater(t, info.Size(), int64(0), rel)
	}

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, "success", summary["status"])
	assert.Equal(t, result.ID, summary["report_id"])
	assert.Equal(t, float64(result.Categories), summary["categories"])
}

func TestLocalRunnerDatasetFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tally.json")
	require.NoError(t, os.WriteFile(src, []byte(`{
		"title": "Lint",
		"categories": ["Error"],
		"colors": ["#f00"],
		"counts": [2],
		"descriptions": [null]
	}`), 0644))

	runner, err := NewLocalRunner(src, "", filepath.Join(dir, "out"))
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Categories)

	page, err := os.ReadFile(filepath.Join(dir, "out", filepath.FromSlash(result.PagePath)))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Lint")
}

func TestLocalRunnerUnsupportedSource(t *testing.T) {
	_, err := NewLocalRunner("tally.csv", "", t.TempDir())
	assert.Error(t, err)
}
