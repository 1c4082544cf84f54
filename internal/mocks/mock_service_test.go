package mocks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMockDataBuiltInSample(t *testing.T) {
	svc := NewMockService("")
	assert.Empty(t, svc.DataDir())

	ds, err := svc.LoadMockData()
	require.NoError(t, err)
	assert.Equal(t, SampleDataset(), ds)
}

func TestLoadMockDataMissingFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewMockService(dir)
	assert.Equal(t, filepath.Join(dir, "data"), svc.DataDir())

	_, err := svc.LoadMockData()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMockDataFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	doc := `{"title":"Mocked","categories":["A"],"colors":["#000"],"counts":[2],"descriptions":[null]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "tally.json"), []byte(doc), 0644))

	svc := NewMockService(dir)
	ds, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Mocked", ds.Title)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, float64(2), ds.Categories[0].Count)
	assert.Equal(t, "mock", svc.Name())
}

func TestLoadMockDataInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "tally.json"), []byte("{"), 0644))

	_, err := NewMockService(dir).LoadMockData()
	assert.Error(t, err)
}

func TestSampleDatasetIsValid(t *testing.T) {
	assert.NoError(t, SampleDataset().Validate())
}
