package charts

import (
	"tallychart/internal/models"
)

// Normalized holds the renderer-ready views of one dataset. All slices are
// index-aligned with the dataset categories and are never nil.
type Normalized struct {
	PointLabels   []string
	LegendEntries []string
	SeriesData    [][]float64
	Colors        []string
}

// Len returns the number of series
func (n Normalized) Len() int {
	return len(n.SeriesData)
}

// PointLabel is the on-bar text for a category, e.g. "Error (3)"
func PointLabel(c models.Category) string {
	return c.Name + " (" + c.FormattedCount() + ")"
}

// LegendEntry is the legend text for a category, e.g. "10 x Warning minor".
// The description is appended only when it is non-empty.
func LegendEntry(c models.Category) string {
	entry := c.FormattedCount() + " x " + c.Name
	if c.HasDescription() {
		entry += " " + c.Description
	}
	return entry
}

// Normalize builds point labels, legend entries and one single-value series
// per category. Colors are passed through untouched.
func Normalize(ds *models.IssueDataset) Normalized {
	n := ds.Len()
	out := Normalized{
		PointLabels:   make([]string, 0, n),
		LegendEntries: make([]string, 0, n),
		SeriesData:    make([][]float64, 0, n),
		Colors:        make([]string, 0, n),
	}
	if n == 0 {
		return out
	}

	for _, c := range ds.Categories {
		out.PointLabels = append(out.PointLabels, PointLabel(c))
		out.LegendEntries = append(out.LegendEntries, LegendEntry(c))
		out.SeriesData = append(out.SeriesData, []float64{c.Count})
		out.Colors = append(out.Colors, c.Color)
	}
	return out
}

// RenderConfig builds the renderer configuration for the given title and viewport
func (n Normalized) RenderConfig(title string, vp Viewport) RenderConfig {
	return RenderConfig{
		Title:         title,
		Series:        n.SeriesData,
		Colors:        n.Colors,
		PointLabels:   n.PointLabels,
		LegendEntries: n.LegendEntries,
		Viewport:      vp,
	}
}
