package fetchers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tallychart/internal/models"
)

// xlsxColumns are the header names a tally sheet must carry; description is optional
var xlsxColumns = []string{"category", "color", "count"}

// XLSXProvider reads the tally from a worksheet with a header row of
// category, color, count and optionally description, in any order.
type XLSXProvider struct {
	path  string
	sheet string
}

// NewXLSXProvider creates a provider for the named sheet of the workbook at
// path; an empty sheet selects the first one.
func NewXLSXProvider(path, sheet string) *XLSXProvider {
	return &XLSXProvider{path: path, sheet: sheet}
}

// Name returns the provider name
func (p *XLSXProvider) Name() string { return "xlsx" }

// Fetch opens the workbook and converts the sheet rows into a dataset.
// The sheet name becomes the dataset title.
func (p *XLSXProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", p.path, err)
	}
	defer f.Close()

	sheet := p.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", p.path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	raw, err := rowsToRaw(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	raw.Title = sheet
	return models.FromParallel(raw)
}

// rowsToRaw maps sheet rows onto the wire shape. Blank rows are skipped and
// an empty description cell means the category has none.
func rowsToRaw(rows [][]string) (models.RawDataset, error) {
	var raw models.RawDataset
	if len(rows) == 0 {
		return raw, fmt.Errorf("missing header row")
	}

	index := make(map[string]int)
	for i, cell := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name != "" {
			index[name] = i
		}
	}
	for _, col := range xlsxColumns {
		if _, ok := index[col]; !ok {
			return raw, fmt.Errorf("missing %q column in header", col)
		}
	}
	descCol, hasDesc := index["description"]

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	raw.Categories = []string{}
	raw.Colors = []string{}
	raw.Counts = []float64{}
	raw.Descriptions = []*string{}

	for r, row := range rows[1:] {
		if blankRow(row) {
			continue
		}

		countText := cell(row, index["count"])
		count, err := strconv.ParseFloat(countText, 64)
		if err != nil {
			return raw, fmt.Errorf("row %d: invalid count %q", r+2, countText)
		}

		raw.Categories = append(raw.Categories, cell(row, index["category"]))
		raw.Colors = append(raw.Colors, cell(row, index["color"]))
		raw.Counts = append(raw.Counts, count)

		var desc *string
		if hasDesc {
			if d := cell(row, descCol); d != "" {
				desc = &d
			}
		}
		raw.Descriptions = append(raw.Descriptions, desc)
	}
	return raw, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
