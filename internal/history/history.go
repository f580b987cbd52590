// Package history reads the purchase report and answers "who supplied this
// item last" questions for the business signals.
package history

import (
	"sort"

	"pharmamatch/internal"
	"pharmamatch/internal/tableio"
	"pharmamatch/internal/util"
)

var (
	ColParticulars = tableio.Column{"Particulars", "Item", "Description"}
	ColDate        = tableio.Column{"Date.", "Date"}
	ColRate        = tableio.Column{"P.Rate", "Rate", "Purchase Rate"}
	ColBillNo      = tableio.Column{"Bill No.", "Bill No", "Bill"}
)

func Load(path string) ([]internal.PurchaseRecord, error) {
	tbl, err := tableio.ReadFile(path, "")
	if err != nil {
		return nil, err
	}
	return FromTable(tbl)
}

// FromTable folds the report top to bottom. A row with no particulars, no bill
// number and a non-date value in the date column names the supplier for the
// rows that follow it.
func FromTable(tbl *tableio.Table) ([]internal.PurchaseRecord, error) {
	if err := tbl.Require(ColParticulars, ColRate, ColDate); err != nil {
		return nil, err
	}
	part, date := tbl.Index(ColParticulars), tbl.Index(ColDate)
	rate, bill := tbl.Index(ColRate), tbl.Index(ColBillNo)

	supplier := ""
	out := make([]internal.PurchaseRecord, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		item := tableio.Cell(row, part)
		dateText := tableio.Cell(row, date)
		billNo := tableio.Cell(row, bill)

		if item == "" {
			if dateText != "" && billNo == "" {
				if _, isDate := ParseDate(dateText); !isDate {
					supplier = dateText
				}
			}
			continue
		}

		when, _ := ParseDate(dateText)
		out = append(out, internal.PurchaseRecord{
			Item:        item,
			CleanItem:   util.CleanBasic(item),
			Supplier:    supplier,
			SupplierKey: util.SimplifySupplier(supplier),
			Date:        when,
			Rate:        util.ParseAmount(tableio.Cell(row, rate)),
			BillNo:      billNo,
		})
	}
	return out, nil
}

type supplierKey struct {
	item     string
	supplier string
}

type Index struct {
	global     map[string]internal.PurchaseRecord
	bySupplier map[supplierKey]internal.PurchaseRecord
}

// BuildIndex keeps the most recent record per item and per (item, supplier).
// Undated records sort before dated ones, so any dated purchase wins.
func BuildIndex(records []internal.PurchaseRecord) *Index {
	sorted := append([]internal.PurchaseRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	idx := &Index{
		global:     map[string]internal.PurchaseRecord{},
		bySupplier: map[supplierKey]internal.PurchaseRecord{},
	}
	for _, r := range sorted {
		if r.CleanItem == "" {
			continue
		}
		idx.global[r.CleanItem] = r
		if r.SupplierKey != "" {
			idx.bySupplier[supplierKey{r.CleanItem, r.SupplierKey}] = r
		}
	}
	return idx
}

// SupplierScore is 1 when this supplier sold the item before, 0.5 when anyone did.
func (idx *Index) SupplierScore(cleanItem, supplier string) float64 {
	if idx == nil {
		return 0
	}
	if _, ok := idx.bySupplier[supplierKey{cleanItem, supplier}]; ok && supplier != "" {
		return 1
	}
	if _, ok := idx.global[cleanItem]; ok {
		return 0.5
	}
	return 0
}

// LastPurchase prefers the supplier's own last purchase over the global one.
func (idx *Index) LastPurchase(cleanItem, supplier string) (internal.PurchaseRecord, bool) {
	if idx == nil {
		return internal.PurchaseRecord{}, false
	}
	if r, ok := idx.bySupplier[supplierKey{cleanItem, supplier}]; ok && supplier != "" {
		return r, true
	}
	r, ok := idx.global[cleanItem]
	return r, ok
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.global)
}
