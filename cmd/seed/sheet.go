package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

// sheetRow is one importable product and the sheet line it came from
type sheetRow struct {
	line  int
	input service.ProductInput
}

// columns the sheet must carry; the rest are optional
var requiredColumns = []string{"name", "price"}

// readProductsFromXLSX reads the first sheet. The header row names the columns
// (case-insensitive), so their order does not matter. Rows without a name are
// skipped.
func readProductsFromXLSX(filePath string) ([]sheetRow, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", col)
		}
	}

	var products []sheetRow
	skipped := 0
	for i, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := index[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if cell("name") == "" {
			skipped++
			continue
		}

		input := service.ProductInput{
			Name:         cell("name"),
			Slug:         cell("slug"),
			Description:  cell("description"),
			Price:        cell("price"),
			Category:     cell("category"),
			Tags:         splitList(cell("tags")),
			Material:     cell("material"),
			Measurements: cell("measurements"),
			ClaspType:    cell("clasp_type"),
			Images:       splitList(cell("images")),
			IsOnSale:     parseBool(cell("is_on_sale")),
			Featured:     parseBool(cell("featured")),
			IsNew:        parseBool(cell("is_new")),
		}
		if v := cell("stock"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				input.Stock = &n
			}
		}
		if v := cell("discount_price"); v != "" {
			if d, err := strconv.ParseFloat(v, 64); err == nil {
				input.DiscountPrice = &d
			}
		}
		if v := cell("original_price"); v != "" {
			if o, err := strconv.ParseFloat(v, 64); err == nil {
				input.OriginalPrice = &o
			}
		}

		// line numbers as shown in the spreadsheet
		products = append(products, sheetRow{line: i + 2, input: input})
	}

	return products, skipped, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "si", "sí", "x":
		return true
	}
	return false
}
