package reports

import (
	"embed"
)

//go:embed templates/report.html
var templateFS embed.FS

// TemplateLoader handles loading the HTML page template
type TemplateLoader struct{}

// NewTemplateLoader creates a new template loader
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{}
}

// LoadHTMLTemplate returns the page template compiled into the binary
func (t *TemplateLoader) LoadHTMLTemplate() (string, error) {
	content, err := templateFS.ReadFile("templates/report.html")
	if err != nil {
		return "", err
	}
	return string(content), nil
}
