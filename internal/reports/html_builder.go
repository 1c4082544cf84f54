package reports

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"tallychart/internal/charts"
	"tallychart/internal/config"
	"tallychart/internal/models"
)

// defaultAssetsHost is where go-echarts publishes its bundled assets
const defaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// HTMLBuilder handles HTML generation with goldmark
type HTMLBuilder struct {
	templateLoader *TemplateLoader
	goldmark       goldmark.Markdown
}

// NewHTMLBuilder creates an HTML builder
func NewHTMLBuilder() *HTMLBuilder {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return &HTMLBuilder{
		templateLoader: NewTemplateLoader(),
		goldmark:       md,
	}
}

// PageData is everything one report page shows
type PageData struct {
	Title       string
	GeneratedAt time.Time
	Dataset     *models.IssueDataset
	Snippet     charts.ChartSnippet
	AssetsHost  string
	// ImagePath is a static fallback image shown when scripts are disabled
	ImagePath string
}

// TemplateData represents the data structure for the HTML template
type TemplateData struct {
	Title         string
	GeneratedAt   string
	EChartsScript string
	Chart         template.HTML
	Table         template.HTML
	ImagePath     string
	Version       string
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (h *HTMLBuilder) ConvertMarkdownToHTML(markdownContent string) (string, error) {
	var buf bytes.Buffer
	if err := h.goldmark.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// CategoryTableMarkdown renders the tally as a GFM table in display order
func CategoryTableMarkdown(ds *models.IssueDataset) string {
	if ds.Len() == 0 {
		return "_No issues recorded._\n"
	}

	var b strings.Builder
	b.WriteString("| Category | Count | Color | Description |\n")
	b.WriteString("|---|---:|---|---|\n")
	for _, c := range ds.Categories {
		fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n",
			markdownCell(c.Name),
			c.FormattedCount(),
			markdownCodeCell(c.Color),
			markdownCell(c.Description))
	}
	return b.String()
}

// markdownCell escapes text for a single table cell
func markdownCell(s string) string {
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// markdownCodeCell prepares text for a code span inside a table cell. The
// code span escapes HTML itself, so only the cell delimiter is escaped.
func markdownCodeCell(s string) string {
	s = strings.ReplaceAll(s, "`", "")
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// BuildPage renders the complete HTML page hosting the chart snippet
func (h *HTMLBuilder) BuildPage(data PageData) (string, error) {
	table, err := h.ConvertMarkdownToHTML(CategoryTableMarkdown(data.Dataset))
	if err != nil {
		return "", err
	}

	title := data.Title
	if title == "" {
		title = "Issue tally"
	}
	assetsHost := data.AssetsHost
	if assetsHost == "" {
		assetsHost = defaultAssetsHost
	}
	generatedAt := data.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	return h.executeTemplate(TemplateData{
		Title:         title,
		GeneratedAt:   generatedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		EChartsScript: strings.TrimSuffix(assetsHost, "/") + "/echarts.min.js",
		Chart:         template.HTML(data.Snippet.HTML),
		Table:         template.HTML(table),
		ImagePath:     data.ImagePath,
		Version:       config.GetVersion(),
	})
}

// executeTemplate executes the HTML template with the provided data
func (h *HTMLBuilder) executeTemplate(data TemplateData) (string, error) {
	htmlTemplate, err := h.templateLoader.LoadHTMLTemplate()
	if err != nil {
		return "", fmt.Errorf("failed to load HTML template: %w", err)
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
