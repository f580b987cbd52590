package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pharmamatch/internal"
	"pharmamatch/internal/tableio"
	"pharmamatch/internal/util"
)

const (
	InputSheet  = "Invoice_Input"
	OutputSheet = "Match_Output"
)

var outputHeaders = []string{
	"Invoice_No", "Line_No", "Invoice_Item_Name", "Supplier_Name",
	"Qty", "Bonus", "Unit_Price_Invoice", "Effective_Unit_Price",
	"MRP_Invoice", "VAT_Amount_or_%", "MRP_Invoice_Adjusted", "MRP_Master", "MRP_Difference", "MRP_Status",
	"Suggested_Item_Code", "Suggested_Item_Name",
	"Last_Purchase_Supplier", "Last_Purchase_Date", "Last_Purchase_Rate",
	"Sequence_Score", "Levenshtein_Score", "Jaccard_Score", "Phonetic_Score", "Component_Bonus",
	"Name_Score", "Supplier_Score", "MRP_Score", "Cost_Score", "Final_Score",
	"Flag_AUTO_OK_or_CHECK", "Match_Details", "Match_Source", "Learned_Match", "Comment",
}

// ExportResultsToXLSX writes the untouched invoice table next to the match
// report so the workbook can be reviewed and fed back as corrections.
func ExportResultsToXLSX(invoice *tableio.Table, results []internal.MatchResult, outputPath string) error {
	f := excelize.NewFile()
	_ = f.SetSheetName(f.GetSheetName(0), InputSheet)
	if invoice != nil {
		writeRow(f, InputSheet, 1, stringsToAny(invoice.Headers))
		for i, row := range invoice.Rows {
			writeRow(f, InputSheet, i+2, stringsToAny(row))
		}
	}

	if _, err := f.NewSheet(OutputSheet); err != nil {
		return err
	}
	writeRow(f, OutputSheet, 1, stringsToAny(outputHeaders))
	for i, res := range results {
		writeRow(f, OutputSheet, i+2, resultRow(res))
	}
	if idx, err := f.GetSheetIndex(OutputSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func resultRow(res internal.MatchResult) []any {
	line := res.Line
	code, name := "", ""
	var retail *float64
	if res.Item != nil {
		code, name, retail = res.Item.Code, res.Item.Name, res.Item.Retail
	}
	lastSupplier, lastDate := "", ""
	var lastRate *float64
	if p := res.LastPurchase; p != nil {
		lastSupplier, lastRate = p.Supplier, p.Rate
		if !p.Date.IsZero() {
			lastDate = p.Date.Format("2006-01-02")
		}
	}
	listScore := 0.0
	if res.Business.HasListPrice {
		listScore = res.Business.ListPrice
	}
	learned := "NO"
	if res.Source == internal.SourceLearned {
		learned = "YES"
	}

	return []any{
		line.InvoiceNo, line.LineNo, line.ItemName, line.Supplier,
		numOrRaw(line.Qty, line.QtyRaw), numOrRaw(line.Bonus, line.BonusRaw), numOrRaw(line.UnitPrice, line.UnitPriceRaw),
		rounded(res.EffectiveUnitPrice, 4),
		numOrRaw(line.ListPrice, line.ListPriceRaw), numOrRaw(line.Tax, line.TaxRaw),
		rounded(res.AdjustedListPrice, 4), derefFloat(retail), rounded(res.ListPriceDiff, 4), string(res.ListPriceStatus),
		code, name,
		lastSupplier, lastDate, derefFloat(lastRate),
		score(res.Name.Sequence), score(res.Name.Levenshtein), score(res.Name.Jaccard), score(res.Name.Phonetic), score(res.Name.ComponentBonus),
		score(res.NameScore), score(res.Business.Supplier), score(listScore), score(res.Business.Cost), score(res.Final),
		string(res.Tier), res.Details, string(res.Source), learned, res.Comment,
	}
}

func writeRow(f *excelize.File, sheet string, r int, values []any) {
	for c, v := range values {
		cell, _ := excelize.CoordinatesToCellName(c+1, r)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func score(v float64) float64 {
	return util.Round(v, 3)
}

func rounded(v *float64, places int32) any {
	if v == nil {
		return ""
	}
	return util.Round(*v, places)
}

func numOrRaw(v *float64, raw string) any {
	if v == nil {
		return raw
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
