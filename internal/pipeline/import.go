package pipeline

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"gcesync/internal/classify"
)

// ReadCodesFromXLSX pulls external codes from the first column of a
// spreadsheet, used to seed the items table in bulk. Cells that do not have
// the code shape (headers, notes) are counted and skipped.
func ReadCodesFromXLSX(path, sheet string) ([]string, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var codes []string
	skipped := 0
	seen := map[string]bool{}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(row[0])
		if cell == "" {
			continue
		}
		if !classify.IsExternalCode(cell) {
			skipped++
			continue
		}
		if seen[cell] {
			continue
		}
		seen[cell] = true
		codes = append(codes, cell)
	}
	return codes, skipped, nil
}
