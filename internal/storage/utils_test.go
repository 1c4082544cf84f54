package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallychart/internal/config"
)

func TestGenerateReportFolderPath(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "2026/03/04/IssueChart-2026-03-04-05-06-07", GenerateReportFolderPath(ts))
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2026/01/01/index.html", "2026/01/01/index.html", false},
		{"a//b/./c.png", "a/b/c.png", false},
		{"", "", true},
		{".", "", true},
		{"/abs", "", true},
		{"../up", "", true},
		{"a/../b", "", true},
		{`a\b`, "", true},
	}
	for _, tt := range tests {
		got, err := CleanPath(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPath, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetContentType(t *testing.T) {
	tests := map[string]string{
		"index.html":  "text/html",
		"chart.png":   "image/png",
		"tally.json":  "application/json",
		"tally.yaml":  "application/yaml",
		"styles.css":  "text/css",
		"photo.JPEG":  "image/jpeg",
		"sheet.xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"notes.md":    "text/markdown",
		"binary.blob": "application/octet-stream",
		"noext":       "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, GetContentType(name), name)
	}
}

func TestNewStorageClientLocal(t *testing.T) {
	cfg := &config.Config{LocalReportsDir: t.TempDir()}
	client, err := NewStorageClient(context.Background(), OutputLocal, cfg)
	require.NoError(t, err)
	defer client.Close()

	_, ok := client.(*LocalStorageClient)
	assert.True(t, ok, "expected LocalStorageClient, got %T", client)
}

func TestNewStorageClientErrors(t *testing.T) {
	_, err := NewStorageClient(context.Background(), OutputGCS, &config.Config{})
	assert.Error(t, err)

	_, err = NewStorageClient(context.Background(), OutputMode("ftp"), &config.Config{})
	assert.Error(t, err)
}
