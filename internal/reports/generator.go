package reports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tallychart/internal/charts"
	"tallychart/internal/logger"
	"tallychart/internal/models"
	"tallychart/internal/storage"
)

// File names inside a stored report folder
const (
	PageFileName  = storage.ReportPageName
	ImageFileName = "chart.png"
)

// Options configures chart rendering for reports
type Options struct {
	Container      string
	Viewport       charts.Viewport
	AssetsHost     string
	ResizeDebounce time.Duration
}

// Page is one rendered report page
type Page struct {
	HTML        string
	Dataset     *models.IssueDataset
	Snippet     charts.ChartSnippet
	GeneratedAt time.Time
}

// Result describes a stored report
type Result struct {
	ID          string    `json:"id"`
	FolderPath  string    `json:"folder_path"`
	PagePath    string    `json:"page_path"`
	ImagePath   string    `json:"image_path"`
	Categories  int       `json:"categories"`
	GeneratedAt time.Time `json:"generated_at"`
	Duration    string    `json:"duration"`
}

// Generator renders report pages and images from a dataset provider.
// Each render builds a fresh adapter, so one call fetches the dataset once.
type Generator struct {
	provider    charts.DatasetProvider
	opts        Options
	htmlBuilder *HTMLBuilder
	log         *logger.Logger
	now         func() time.Time
}

// NewGenerator creates a report generator
func NewGenerator(provider charts.DatasetProvider, opts Options, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Generator{
		provider:    provider,
		opts:        opts,
		htmlBuilder: NewHTMLBuilder(),
		log:         log.WithComponent("reports"),
		now:         time.Now,
	}
}

// recordingProvider remembers the dataset handed to the adapter so the page
// table shows exactly what was charted
type recordingProvider struct {
	inner charts.DatasetProvider

	mu sync.Mutex
	ds *models.IssueDataset
}

func (p *recordingProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	ds, err := p.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.ds = ds
	p.mu.Unlock()
	return ds, nil
}

func (p *recordingProvider) dataset() *models.IssueDataset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ds
}

type snapshotProvider struct {
	ds *models.IssueDataset
}

func (p snapshotProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	return p.ds, nil
}

func (g *Generator) render(ctx context.Context, renderer charts.Renderer) (charts.Handle, *models.IssueDataset, error) {
	rec := &recordingProvider{inner: g.provider}
	adapter, err := charts.NewAdapter(rec, renderer, charts.AdapterOptions{
		Container:      g.opts.Container,
		Viewport:       g.opts.Viewport,
		ResizeDebounce: g.opts.ResizeDebounce,
		Logger:         g.log,
	})
	if err != nil {
		return nil, nil, err
	}
	h, err := adapter.Ready(ctx)
	if err != nil {
		return nil, nil, err
	}
	return h, rec.dataset(), nil
}

// RenderPage renders the echarts page. imagePath, when set, is linked as the
// no-script fallback.
func (g *Generator) RenderPage(ctx context.Context, imagePath string) (*Page, error) {
	h, ds, err := g.render(ctx, charts.NewEChartsRenderer(g.opts.AssetsHost))
	if err != nil {
		return nil, err
	}
	eh, ok := h.(*charts.EChartsHandle)
	if !ok {
		return nil, fmt.Errorf("unexpected handle type %T", h)
	}

	generatedAt := g.now()
	html, err := g.htmlBuilder.BuildPage(PageData{
		Title:       ds.Title,
		GeneratedAt: generatedAt,
		Dataset:     ds,
		Snippet:     eh.Snippet(),
		AssetsHost:  g.opts.AssetsHost,
		ImagePath:   imagePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build page: %w", err)
	}

	return &Page{
		HTML:        html,
		Dataset:     ds,
		Snippet:     eh.Snippet(),
		GeneratedAt: generatedAt,
	}, nil
}

// RenderImage renders the PNG chart; a non-nil viewport triggers a relayout
// of the rendered chart to that size.
func (g *Generator) RenderImage(ctx context.Context, vp *charts.Viewport) ([]byte, error) {
	h, _, err := g.render(ctx, charts.NewPNGRenderer())
	if err != nil {
		return nil, err
	}
	ph, ok := h.(*charts.PNGHandle)
	if !ok {
		return nil, fmt.Errorf("unexpected handle type %T", h)
	}
	if vp != nil {
		if err := ph.Relayout(ctx, *vp); err != nil {
			return nil, err
		}
	}
	return ph.Image(), nil
}

// Generate renders the page and the image and stores both in one report folder
func (g *Generator) Generate(ctx context.Context, store storage.StorageClient) (*Result, error) {
	start := time.Now()
	id := uuid.New().String()
	g.log.Info("Starting report generation", map[string]interface{}{"report_id": id})

	// page and image are drawn from one snapshot of the dataset
	ds, err := g.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	snap := *g
	snap.provider = snapshotProvider{ds: ds}

	image, err := snap.RenderImage(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to render image: %w", err)
	}
	page, err := snap.RenderPage(ctx, ImageFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	ts := page.GeneratedAt
	imagePath, err := store.StoreFile(ctx, image, ImageFileName, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	pagePath, err := store.StoreFile(ctx, []byte(page.HTML), PageFileName, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to store page: %w", err)
	}

	result := &Result{
		ID:          id,
		FolderPath:  storage.GenerateReportFolderPath(ts),
		PagePath:    pagePath,
		ImagePath:   imagePath,
		Categories:  page.Dataset.Len(),
		GeneratedAt: ts,
		Duration:    time.Since(start).String(),
	}
	g.log.Info("Report stored", map[string]interface{}{
		"report_id": id,
		"folder":    result.FolderPath,
		"duration":  result.Duration,
	})
	return result, nil
}
