package util

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	commaThousands = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	dotThousands   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3}){2,}(?:,\d+)?$`)
	currencyPrefix = regexp.MustCompile(`(?i)^(?:AED|OMR|SAR|QAR|KWD|BHD|USD|EUR|RS\.?|\$)\s*`)
)

// ParseAmount reads a numeric cell. Blank or unparseable input yields nil.
// A trailing percent sign is dropped so "5%" reads as 5.
func ParseAmount(input string) *float64 {
	s := strings.TrimSpace(strings.ReplaceAll(input, "\u00a0", " "))
	if s == "" {
		return nil
	}
	s = currencyPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	d, err := decimal.NewFromString(normalizeNumericToken(s))
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return FloatPtr(f)
}

// Round rounds half away from zero to the given number of places.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if commaThousands.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if dotThousands.MatchString(compact) {
		compact = strings.ReplaceAll(compact, ".", "")
		return strings.ReplaceAll(compact, ",", ".")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}

func FloatPtr(v float64) *float64 { return &v }

func StringPtr(v string) *string { return &v }

// DerefFloat returns 0 for nil.
func DerefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
