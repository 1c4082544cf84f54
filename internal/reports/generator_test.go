package reports

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallychart/internal/charts"
	"tallychart/internal/logger"
	"tallychart/internal/models"
	"tallychart/internal/storage"
)

type countingProvider struct {
	ds    *models.IssueDataset
	err   error
	calls int
}

func (p *countingProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	p.calls++
	return p.ds, p.err
}

func testOptions() Options {
	return Options{
		Container:  "issueChart",
		Viewport:   charts.Viewport{Width: 640, Height: 320},
		AssetsHost: "https://cdn.example.com/",
	}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: &bytes.Buffer{}})
}

func TestRenderPage(t *testing.T) {
	p := &countingProvider{ds: buildIssues()}
	g := NewGenerator(p, testOptions(), quietLogger())

	page, err := g.RenderPage(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "issueChart", page.Snippet.ID)
	assert.Contains(t, page.HTML, page.Snippet.HTML)
	assert.Contains(t, page.HTML, "Error (3)")
	assert.Contains(t, page.HTML, "10 x Warning minor")
	assert.Same(t, p.ds, page.Dataset)
}

func TestRenderImage(t *testing.T) {
	g := NewGenerator(&countingProvider{ds: buildIssues()}, testOptions(), quietLogger())

	img, err := g.RenderImage(context.Background(), nil)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)

	img, err = g.RenderImage(context.Background(), &charts.Viewport{Width: 300, Height: 200})
	require.NoError(t, err)
	cfg, err = png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestRenderFailures(t *testing.T) {
	fetchErr := errors.New("offline")
	g := NewGenerator(&countingProvider{err: fetchErr}, testOptions(), quietLogger())

	_, err := g.RenderPage(context.Background(), "")
	assert.ErrorIs(t, err, fetchErr)
	_, err = g.RenderImage(context.Background(), nil)
	assert.ErrorIs(t, err, fetchErr)

	bad := testOptions()
	bad.Container = "not valid"
	_, err = NewGenerator(&countingProvider{ds: buildIssues()}, bad, quietLogger()).RenderPage(context.Background(), "")
	assert.ErrorIs(t, err, charts.ErrInvalidContainer)
}

func TestGenerateStoresPageAndImage(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorageClient(filepath.Join(t.TempDir(), "reports"))
	require.NoError(t, err)

	p := &countingProvider{ds: buildIssues()}
	result, err := NewGenerator(p, testOptions(), quietLogger()).Generate(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, 2, result.Categories)
	assert.Equal(t, result.FolderPath+"/index.html", result.PagePath)
	assert.Equal(t, result.FolderPath+"/chart.png", result.ImagePath)

	page, err := store.GetFile(ctx, result.PagePath)
	require.NoError(t, err)
	assert.Contains(t, string(page), `<img src="chart.png"`)

	exists, err := store.FileExists(ctx, result.ImagePath)
	require.NoError(t, err)
	assert.True(t, exists)

	listed, err := store.ListReports(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{result.PagePath}, listed)
}

func TestGenerateFetchError(t *testing.T) {
	store, err := storage.NewLocalStorageClient(t.TempDir())
	require.NoError(t, err)

	_, err = NewGenerator(&countingProvider{err: errors.New("nope")}, testOptions(), quietLogger()).Generate(context.Background(), store)
	assert.Error(t, err)
}
