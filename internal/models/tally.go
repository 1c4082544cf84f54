package models

import (
	"fmt"
	"math"
	"strconv"
)

// IssueDataset is a categorical issue tally, one record per category in display order
type IssueDataset struct {
	Title      string     `json:"title" yaml:"title"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category is a single tally row. An empty Description means none was supplied.
type Category struct {
	Name        string  `json:"name" yaml:"name"`
	Color       string  `json:"color" yaml:"color"`
	Count       float64 `json:"count" yaml:"count"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// RawDataset is the parallel-array shape dataset providers deliver.
// Index i of every slice describes category i.
type RawDataset struct {
	Title        string    `json:"title" yaml:"title"`
	Categories   []string  `json:"categories" yaml:"categories"`
	Colors       []string  `json:"colors" yaml:"colors"`
	Counts       []float64 `json:"counts" yaml:"counts"`
	Descriptions []*string `json:"descriptions" yaml:"descriptions"`
}

// Len returns the number of categories
func (d *IssueDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Categories)
}

// HasDescription reports whether the category carries a non-empty description
func (c Category) HasDescription() bool {
	return c.Description != ""
}

// FormattedCount renders the count the way labels show it: integral values
// without a decimal point, fractional values in shortest exact form.
func (c Category) FormattedCount() string {
	return FormatCount(c.Count)
}

// FormatCount formats a tally count for display
func FormatCount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FromParallel converts the provider wire shape into per-category records.
// Slices of differing length are rejected rather than truncated or padded.
// A nil Descriptions slice is accepted and means no category has one.
func FromParallel(raw RawDataset) (*IssueDataset, error) {
	n := len(raw.Categories)
	if len(raw.Colors) != n {
		return nil, newMisaligned("colors", len(raw.Colors), n)
	}
	if len(raw.Counts) != n {
		return nil, newMisaligned("counts", len(raw.Counts), n)
	}
	if raw.Descriptions != nil && len(raw.Descriptions) != n {
		return nil, newMisaligned("descriptions", len(raw.Descriptions), n)
	}

	ds := &IssueDataset{
		Title:      raw.Title,
		Categories: make([]Category, 0, n),
	}
	for i := 0; i < n; i++ {
		c := Category{
			Name:  raw.Categories[i],
			Color: raw.Colors[i],
			Count: raw.Counts[i],
		}
		if raw.Descriptions != nil && raw.Descriptions[i] != nil {
			c.Description = *raw.Descriptions[i]
		}
		ds.Categories = append(ds.Categories, c)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks that every count is a finite non-negative number
func (d *IssueDataset) Validate() error {
	if d == nil {
		return fmt.Errorf("dataset: %w", ErrEmptyDataset)
	}
	for i, c := range d.Categories {
		if math.IsNaN(c.Count) || math.IsInf(c.Count, 0) || c.Count < 0 {
			return &ValidationError{
				Field:  "counts",
				Index:  i,
				Reason: fmt.Sprintf("count %v for %q is not a finite non-negative number", c.Count, c.Name),
				Err:    ErrInvalidCount,
			}
		}
	}
	return nil
}

// ToParallel returns the dataset in provider wire shape
func (d *IssueDataset) ToParallel() RawDataset {
	raw := RawDataset{Title: d.Title}
	n := d.Len()
	raw.Categories = make([]string, 0, n)
	raw.Colors = make([]string, 0, n)
	raw.Counts = make([]float64, 0, n)
	raw.Descriptions = make([]*string, 0, n)
	for _, c := range d.Categories {
		raw.Categories = append(raw.Categories, c.Name)
		raw.Colors = append(raw.Colors, c.Color)
		raw.Counts = append(raw.Counts, c.Count)
		if c.HasDescription() {
			desc := c.Description
			raw.Descriptions = append(raw.Descriptions, &desc)
		} else {
			raw.Descriptions = append(raw.Descriptions, nil)
		}
	}
	return raw
}
