package pipeline

import (
	"fmt"

	"pharmamatch/internal"
	"pharmamatch/internal/tableio"
	"pharmamatch/internal/util"
)

var (
	ColInvoiceNo = tableio.Column{"Invoice_No"}
	ColLineNo    = tableio.Column{"Line_No"}
	ColItemName  = tableio.Column{"Invoice_Item_Name"}
	ColSupplier  = tableio.Column{"Supplier_Name"}
	ColQty       = tableio.Column{"Qty"}
	ColBonus     = tableio.Column{"Bonus"}
	ColUnitPrice = tableio.Column{"Unit_Price", "Unit_Price_Invoice"}
	ColListPrice = tableio.Column{"MRP_Invoice"}
	ColTax       = tableio.Column{"VAT_Amount_or_%"}
)

// Invoice keeps the source table so the report can echo it unchanged.
type Invoice struct {
	Table *tableio.Table
	Lines []internal.InvoiceLine
}

func LoadInvoice(path, sheet string) (Invoice, error) {
	tbl, err := tableio.ReadFile(path, sheet)
	if err != nil {
		return Invoice{}, err
	}
	lines, err := InvoiceFromTable(tbl)
	if err != nil {
		return Invoice{}, fmt.Errorf("invoice %s: %w", path, err)
	}
	return Invoice{Table: tbl, Lines: lines}, nil
}

// InvoiceFromTable reads every data row. Numbers that do not parse stay nil
// and their raw text is kept for the report.
func InvoiceFromTable(tbl *tableio.Table) ([]internal.InvoiceLine, error) {
	if err := tbl.Require(ColItemName); err != nil {
		return nil, err
	}
	var (
		invNo    = tbl.Index(ColInvoiceNo)
		lineNo   = tbl.Index(ColLineNo)
		name     = tbl.Index(ColItemName)
		supplier = tbl.Index(ColSupplier)
		qty      = tbl.Index(ColQty)
		bonus    = tbl.Index(ColBonus)
		price    = tbl.Index(ColUnitPrice)
		list     = tbl.Index(ColListPrice)
		tax      = tbl.Index(ColTax)
	)

	out := make([]internal.InvoiceLine, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		line := internal.InvoiceLine{
			RowNo:        i + 1,
			InvoiceNo:    tableio.Cell(row, invNo),
			LineNo:       tableio.Cell(row, lineNo),
			ItemName:     tableio.Cell(row, name),
			Supplier:     tableio.Cell(row, supplier),
			QtyRaw:       tableio.Cell(row, qty),
			BonusRaw:     tableio.Cell(row, bonus),
			UnitPriceRaw: tableio.Cell(row, price),
			ListPriceRaw: tableio.Cell(row, list),
			TaxRaw:       tableio.Cell(row, tax),
		}
		line.Qty = util.ParseAmount(line.QtyRaw)
		line.Bonus = util.ParseAmount(line.BonusRaw)
		line.UnitPrice = util.ParseAmount(line.UnitPriceRaw)
		line.ListPrice = util.ParseAmount(line.ListPriceRaw)
		line.Tax = util.ParseAmount(line.TaxRaw)
		out = append(out, line)
	}
	return out, nil
}
