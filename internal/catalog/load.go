package catalog

import (
	"fmt"

	"pharmamatch/internal"
	"pharmamatch/internal/pharma"
	"pharmamatch/internal/tableio"
	"pharmamatch/internal/util"
)

var (
	ColCode   = tableio.Column{"Item Code", "Code", "Item_Code"}
	ColName   = tableio.Column{"Item Name", "Item_Name", "Name", "Description"}
	ColCost   = tableio.Column{"B.Rate", "Buy Rate", "Cost"}
	ColRetail = tableio.Column{"S.Rate", "Sell Rate", "Retail Price", "MRP"}
)

func Load(path string, parser *pharma.Parser) ([]internal.CatalogItem, error) {
	tbl, err := tableio.ReadFile(path, "")
	if err != nil {
		return nil, err
	}
	items, err := FromTable(tbl, parser)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return items, nil
}

// FromTable skips rows without a code or a name. Prices that do not parse
// are left nil.
func FromTable(tbl *tableio.Table, parser *pharma.Parser) ([]internal.CatalogItem, error) {
	if err := tbl.Require(ColCode, ColName); err != nil {
		return nil, err
	}
	code, name := tbl.Index(ColCode), tbl.Index(ColName)
	cost, retail := tbl.Index(ColCost), tbl.Index(ColRetail)

	out := make([]internal.CatalogItem, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		c := tableio.Cell(row, code)
		n := tableio.Cell(row, name)
		if c == "" || n == "" {
			continue
		}
		out = append(out, internal.CatalogItem{
			Code:      c,
			Name:      n,
			CleanName: util.CleanBasic(n),
			Parsed:    parser.Parse(n),
			Cost:      util.ParseAmount(tableio.Cell(row, cost)),
			Retail:    util.ParseAmount(tableio.Cell(row, retail)),
		})
	}
	return out, nil
}
