package catalog

import (
	"strings"

	"pharmamatch/internal"
)

type Index struct {
	Items  []internal.CatalogItem
	ByCode map[string]int
	tfidf  *TFIDF
}

// BuildIndex fits the retrieval vectors on the residual clean text of every item.
func BuildIndex(items []internal.CatalogItem) *Index {
	idx := &Index{
		Items:  items,
		ByCode: map[string]int{},
	}

	corpus := make([]string, len(items))
	for i, item := range items {
		corpus[i] = item.Parsed.CleanText
		code := NormalizeCode(item.Code)
		if _, seen := idx.ByCode[code]; !seen && code != "" {
			idx.ByCode[code] = i
		}
	}
	idx.tfidf = NewTFIDF(corpus, 1, 3)
	return idx
}

// Retrieve returns up to k catalog positions for a parsed query's clean text.
func (idx *Index) Retrieve(cleanText string, k int) []int {
	return idx.tfidf.TopK(cleanText, k)
}

func (idx *Index) Lookup(code string) (*internal.CatalogItem, bool) {
	i, ok := idx.ByCode[NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	return &idx.Items[i], true
}

// FindContainingAll returns the first item whose cleaned name contains every
// substring.
func (idx *Index) FindContainingAll(substrings []string) (int, bool) {
	if len(substrings) == 0 {
		return -1, false
	}
	for i, item := range idx.Items {
		hit := true
		for _, s := range substrings {
			if !strings.Contains(item.CleanName, strings.ToUpper(s)) {
				hit = false
				break
			}
		}
		if hit {
			return i, true
		}
	}
	return -1, false
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
