package catalog

import (
	"math"
	"sort"
	"strings"
)

type posting struct {
	doc    int
	weight float64
}

// TFIDF is a character n-gram vector space over a fixed corpus. N-grams are
// taken inside word boundaries, each word padded with one space per side.
type TFIDF struct {
	minN, maxN int
	docs       int
	idf        map[string]float64
	postings   map[string][]posting
}

func NewTFIDF(corpus []string, minN, maxN int) *TFIDF {
	t := &TFIDF{
		minN:     minN,
		maxN:     maxN,
		docs:     len(corpus),
		idf:      map[string]float64{},
		postings: map[string][]posting{},
	}

	counts := make([]map[string]int, len(corpus))
	df := map[string]int{}
	for i, doc := range corpus {
		counts[i] = termCounts(charWBNgrams(doc, minN, maxN))
		for term := range counts[i] {
			df[term]++
		}
	}
	for term, n := range df {
		t.idf[term] = math.Log(float64(1+t.docs)/float64(1+n)) + 1
	}

	for i, tc := range counts {
		vec := t.weigh(tc)
		for term, w := range vec {
			t.postings[term] = append(t.postings[term], posting{doc: i, weight: w})
		}
	}
	return t
}

// Scores returns the cosine similarity of query against every document.
func (t *TFIDF) Scores(query string) []float64 {
	scores := make([]float64, t.docs)
	qv := t.weigh(termCounts(charWBNgrams(query, t.minN, t.maxN)))
	for term, qw := range qv {
		for _, p := range t.postings[term] {
			scores[p.doc] += qw * p.weight
		}
	}
	return scores
}

// TopK ranks documents by descending similarity, ties by corpus order.
func (t *TFIDF) TopK(query string, k int) []int {
	if strings.TrimSpace(query) == "" || k <= 0 || t.docs == 0 {
		return nil
	}
	scores := t.Scores(query)
	order := make([]int, t.docs)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if len(order) > k {
		order = order[:k]
	}
	return order
}

// weigh applies idf to raw counts and L2-normalizes. Unknown terms are dropped.
func (t *TFIDF) weigh(counts map[string]int) map[string]float64 {
	vec := make(map[string]float64, len(counts))
	norm := 0.0
	for term, c := range counts {
		idf, ok := t.idf[term]
		if !ok {
			continue
		}
		w := float64(c) * idf
		vec[term] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

func charWBNgrams(text string, minN, maxN int) []string {
	out := []string{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		padded := []rune(" " + w + " ")
		for n := minN; n <= maxN; n++ {
			offset := 0
			out = append(out, string(padded[offset:min(offset+n, len(padded))]))
			for offset+n < len(padded) {
				offset++
				out = append(out, string(padded[offset:offset+n]))
			}
			if offset == 0 {
				break
			}
		}
	}
	return out
}

func termCounts(terms []string) map[string]int {
	out := make(map[string]int, len(terms))
	for _, term := range terms {
		out[term]++
	}
	return out
}
