// Package similarity scores a parsed invoice name against a parsed catalog
// name with five independent signals.
package similarity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"

	"pharmamatch/internal"
)

const (
	dosageBonus  = 0.3
	formBonus    = 0.1
	maxComponent = 0.4
)

func Compare(query, candidate internal.ParsedName) internal.NameSignals {
	return internal.NameSignals{
		Sequence:       SequenceRatio(query.FullClean, candidate.FullClean),
		Levenshtein:    LevenshteinSimilarity(query.CleanText, candidate.CleanText),
		Jaccard:        Jaccard(query.Tokens, candidate.Tokens),
		Phonetic:       Phonetic(query.CleanText, candidate.CleanText),
		ComponentBonus: ComponentBonus(query, candidate),
	}
}

// SequenceRatio is the Ratcliff/Obershelp ratio 2*M/T over characters.
func SequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

func LevenshteinSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := map[string]struct{}{}
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, t := range b {
		setB[t] = struct{}{}
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ComponentBonus rewards shared dosages and an equal canonical form, capped at 0.4.
func ComponentBonus(query, candidate internal.ParsedName) float64 {
	bonus := 0.0
	if len(query.Dosages) > 0 && len(candidate.Dosages) > 0 {
		have := map[string]struct{}{}
		for _, d := range candidate.Dosages {
			have[d] = struct{}{}
		}
		matches := 0
		for _, d := range query.Dosages {
			if _, ok := have[d]; ok {
				matches++
			}
		}
		bonus += dosageBonus * float64(matches) / float64(max(len(query.Dosages), len(candidate.Dosages)))
	}
	if query.Form != "" && query.Form == candidate.Form {
		bonus += formBonus
	}
	return min(bonus, maxComponent)
}

// Details renders the signals for the breakdown column.
func Details(s internal.NameSignals) string {
	return fmt.Sprintf("Seq:%.2f Lev:%.2f Jac:%.2f Pho:%.2f Cmp:%.2f",
		s.Sequence, s.Levenshtein, s.Jaccard, s.Phonetic, s.ComponentBonus)
}
