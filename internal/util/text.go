package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const punctuation = `*,.-/()%'"&`

// CleanBasic uppercases, folds accents, blanks the punctuation set and
// collapses whitespace. A dot between two digits is kept so "2.5MG" survives.
func CleanBasic(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	s := strings.ToUpper(foldAccents(input))

	rs := []rune(s)
	b := strings.Builder{}
	b.Grow(len(s))
	for i, r := range rs {
		if r == '.' && i > 0 && i < len(rs)-1 && isDigit(rs[i-1]) && isDigit(rs[i+1]) {
			b.WriteRune(r)
			continue
		}
		if strings.ContainsRune(punctuation, r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SimplifySupplier keeps the first two words of the cleaned supplier name.
func SimplifySupplier(input string) string {
	words := strings.Fields(CleanBasic(input))
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// NormalizeColumn folds a column header for alias lookup.
func NormalizeColumn(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.NewReplacer("_", " ", ".", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func foldAccents(input string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
