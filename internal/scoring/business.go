package scoring

import (
	"pharmamatch/internal"
)

// SupplierHistory answers whether a supplier or anyone sold an item before.
type SupplierHistory interface {
	SupplierScore(cleanItem, supplier string) float64
}

// LinePrices are the per-line derived prices shared by every candidate.
type LinePrices struct {
	Effective *float64
	Adjusted  *float64
}

func PricesFor(line internal.InvoiceLine) LinePrices {
	return LinePrices{
		Effective: EffectiveUnitPrice(line.UnitPrice, line.Qty, line.Bonus),
		Adjusted:  AdjustedListPrice(line.ListPrice, line.Tax),
	}
}

type BusinessScorer struct {
	history SupplierHistory
}

func NewBusinessScorer(history SupplierHistory) *BusinessScorer {
	return &BusinessScorer{history: history}
}

func (s *BusinessScorer) Score(item internal.CatalogItem, supplier string, prices LinePrices) internal.BusinessSignals {
	out := internal.BusinessSignals{
		Cost:         CostScore(prices.Effective, item.Cost),
		HasListPrice: prices.Adjusted != nil && item.Retail != nil,
	}
	if s.history != nil {
		out.Supplier = s.history.SupplierScore(item.CleanName, supplier)
	}
	if out.HasListPrice {
		out.ListPrice = ListPriceScore(*prices.Adjusted, *item.Retail)
	}
	return out
}
