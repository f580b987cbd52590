package scoring

import (
	"math"

	"pharmamatch/internal"
)

// eps absorbs float noise at band edges so a 10% markup reads as 10%.
const eps = 1e-9

// TaxRate reads the tax column: values up to 1 are rates, larger values are
// percentages. Missing or negative input means no tax.
func TaxRate(raw *float64) float64 {
	if raw == nil || *raw < 0 || math.IsNaN(*raw) {
		return 0
	}
	if *raw <= 1 {
		return *raw
	}
	return *raw / 100
}

// AdjustedListPrice strips tax from the quoted list price.
func AdjustedListPrice(listPrice, tax *float64) *float64 {
	if listPrice == nil || *listPrice <= 0 {
		return nil
	}
	rate := TaxRate(tax)
	if rate <= 0 {
		v := *listPrice
		return &v
	}
	v := *listPrice / (1 + rate)
	return &v
}

// EffectiveUnitPrice spreads the paid price over paid plus bonus units.
func EffectiveUnitPrice(unitPrice, qty, bonus *float64) *float64 {
	if unitPrice == nil || qty == nil {
		return nil
	}
	b := 0.0
	if bonus != nil {
		b = *bonus
	}
	total := *qty + b
	if *qty <= 0 || total <= 0 {
		return nil
	}
	v := *unitPrice * *qty / total
	return &v
}

// CostScore compares the effective price against the catalog cost.
func CostScore(effective, cost *float64) float64 {
	if effective == nil || cost == nil || *effective <= 0 || *cost <= 0 {
		return 0
	}
	delta := math.Abs(*effective / *cost - 1)
	switch {
	case delta <= 0.10+eps:
		return 1
	case delta <= 0.40+eps:
		return 0.5
	default:
		return 0
	}
}

// ListPriceScore decays linearly, reaching zero at one third relative difference.
func ListPriceScore(adjusted, retail float64) float64 {
	if adjusted <= 0 || retail <= 0 {
		return 0
	}
	rel := math.Abs(adjusted-retail) / math.Max(adjusted, retail)
	return math.Max(0, 1-3*rel)
}

// CompareListPrice reports the invoice list price against the catalog retail
// price. The status is informational only.
func CompareListPrice(adjusted, retail *float64) (*float64, internal.ListPriceStatus) {
	if adjusted == nil || retail == nil || *retail <= 0 {
		return nil, internal.ListPriceUnknown
	}
	diff := *adjusted - *retail
	pct := math.Abs(diff) / *retail
	switch {
	case pct <= 0.05+eps:
		return &diff, internal.ListPriceOK
	case pct <= 0.10+eps:
		return &diff, internal.ListPriceCheck
	default:
		return &diff, internal.ListPriceOvercharged
	}
}
