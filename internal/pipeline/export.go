package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"gcesync/internal"
)

// ExportItemsToXLSX writes the reconciled items table to a spreadsheet report.
func ExportItemsToXLSX(items []internal.CatalogItem, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"id", "codigo_gce", "item_nome",
		"ata", "validade_ata", "valor_unitario_ata",
		"validade_valor_referencia", "valor_unitario_referencia",
		"updated_at",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, item := range items {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, item.ID)
		set(2, derefString(item.ExternalCode))
		set(3, derefString(item.DisplayName))
		set(4, derefString(item.AgreementRef))
		set(5, derefString(item.AgreementValidity))
		set(6, derefFloat(item.AgreementPrice))
		set(7, derefString(item.ReferenceValidity))
		set(8, derefFloat(item.ReferencePrice))
		set(9, derefString(item.UpdatedAt))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
