package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pharmamatch/internal"
	"pharmamatch/internal/storage"
	"pharmamatch/internal/tableio"
)

func writeXLSX(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	name := f.GetSheetName(0)
	if sheet != "" {
		_ = f.SetSheetName(name, sheet)
		name = sheet
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(name, cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func toAnyRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = stringsToAny(row)
	}
	return out
}

func TestSmokeInvoiceToXLSX(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig()
	cfg.CatalogFile = filepath.Join(tmp, "MasterListNew.xlsx")
	cfg.PurchaseHistoryFile = filepath.Join(tmp, "PurchaseReport.xlsx")
	cfg.InvoiceFile = filepath.Join(tmp, "InvoiceMatchingTemplate.xlsx")
	cfg.InvoiceSheet = InputSheet
	cfg.CorrectionsFile = filepath.Join(tmp, "match_corrections.xlsx")
	cfg.OutputFile = filepath.Join(tmp, "out", "InvoiceMatchingTemplate_out.xlsx")

	writeXLSX(t, cfg.CatalogFile, "", toAnyRows(catalogRows))
	writeXLSX(t, cfg.PurchaseHistoryFile, "", toAnyRows(historyRows))
	writeXLSX(t, cfg.CorrectionsFile, "", [][]any{
		{"Invoice_Item_Name", "Supplier_Name", "Suggested_Item_Code", "Final_Score", "Corrected_Item_Code"},
		{"Panadol 500", "Al Maqam Medical Store", "P2", 0.62, "P1"},
	})
	writeXLSX(t, cfg.InvoiceFile, InputSheet, [][]any{
		{"Invoice_No", "Line_No", "Invoice_Item_Name", "Supplier_Name", "Qty", "Bonus", "Unit_Price", "MRP_Invoice", "VAT_Amount_or_%"},
		{"INV-1", 1, "Paracet 500mg Tablets 20's", "Al Maqam Medical Store", 10, 0, 1.05, 2.1, 0},
		{"INV-1", 2, "Panadol 500", "Al Maqam Medical Store", 5, "", 1.0, "", ""},
		{"INV-1", 3, " *** ", "", "", "", "", "", ""},
		{"INV-1", 4, "Ozanex cream", "", 1, "", 10, 15.75, 5},
	})

	db, err := storage.Open(filepath.Join(tmp, "data", "learned_mappings.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	out, err := NewRunService(db, cfg, zap.NewNop()).Run()
	if err != nil {
		t.Fatal(err)
	}

	want := internal.RunSummary{RunID: out.Summary.RunID, Total: 3, Skipped: 1, Learned: 1, Overrides: 1, AutoOK: 3}
	if out.Summary != want {
		t.Fatalf("summary=%+v", out.Summary)
	}
	if out.Results[1].Source != internal.SourceLearned || out.Results[1].Final != 0.90 {
		t.Fatalf("learned line=%+v", out.Results[1])
	}

	if _, err := os.Stat(cfg.OutputFile); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(cfg.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	input, err := f.GetRows(InputSheet)
	if err != nil || len(input) != 5 {
		t.Fatalf("input rows=%d err=%v", len(input), err)
	}
	rows, err := f.GetRows(OutputSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("output rows=%d", len(rows))
	}
	col := map[string]int{}
	for i, h := range rows[0] {
		col[h] = i
	}
	if rows[1][col["Suggested_Item_Code"]] != "P1" || rows[1][col["Flag_AUTO_OK_or_CHECK"]] != "AUTO_OK" {
		t.Fatalf("first row=%v", rows[1])
	}
	if rows[2][col["Learned_Match"]] != "YES" || rows[3][col["Match_Source"]] != "OVERRIDE" {
		t.Fatalf("rows=%v", rows[1:])
	}
	if rows[3][col["MRP_Status"]] != "OK" {
		t.Fatalf("override list price status=%q", rows[3][col["MRP_Status"]])
	}

	runs, err := db.CountRuns()
	if err != nil || runs != 1 {
		t.Fatalf("runs=%d err=%v", runs, err)
	}
	last, err := db.GetMetadata("last_run_id")
	if err != nil || last == nil || *last != out.Summary.RunID {
		t.Fatalf("last run=%v err=%v", last, err)
	}
}

func TestInvoiceFromTableKeepsRawText(t *testing.T) {
	blob := [][]string{
		{"Invoice_Item_Name", "Qty", "Unit_Price_Invoice", "VAT_Amount_or_%"},
		{"Paracet 500", "ten", "1,05", "5%"},
	}
	lines, err := InvoiceFromTable(tableio.NewTable(blob))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines=%d", len(lines))
	}
	l := lines[0]
	if l.Qty != nil || l.QtyRaw != "ten" {
		t.Fatalf("qty=%v raw=%q", l.Qty, l.QtyRaw)
	}
	if l.UnitPrice == nil || *l.UnitPrice != 1.05 {
		t.Fatalf("unit price=%v", l.UnitPrice)
	}
	if l.Tax == nil || *l.Tax != 5 {
		t.Fatalf("tax=%v", l.Tax)
	}
}
