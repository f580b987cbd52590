package learning

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"invoice_pattern", "supplier_pattern", "master_item_code", "master_item_name",
	"confidence", "times_seen", "times_confirmed", "learned_date", "last_confirmed",
}

// ExportMappings writes every learned mapping for review, strongest first.
func ExportMappings(store Store, outputPath string) (int, error) {
	mappings, err := store.ListMappings()
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	sheet := "Learned_Mappings"
	_ = f.SetSheetName(f.GetSheetName(0), sheet)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, m := range mappings {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		supplier := ""
		if m.SupplierPattern != nil {
			supplier = *m.SupplierPattern
		}
		set(1, m.InvoicePattern)
		set(2, supplier)
		set(3, m.ItemCode)
		set(4, m.ItemName)
		set(5, m.Confidence)
		set(6, m.TimesSeen)
		set(7, m.TimesConfirmed)
		set(8, m.LearnedAt.Format("2006-01-02 15:04:05"))
		set(9, m.LastConfirmedAt.Format("2006-01-02 15:04:05"))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, err
	}
	return len(mappings), f.SaveAs(outputPath)
}
