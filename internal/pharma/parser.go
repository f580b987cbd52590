// Package pharma turns free-text pharmaceutical descriptions into
// structured names: expanded words, dosages, canonical form, pack size and
// the residual tokens used for name similarity.
package pharma

import (
	"regexp"
	"sort"
	"strings"

	"pharmamatch/internal"
	"pharmamatch/internal/util"
)

type Parser struct {
	dosage *regexp.Regexp
	form   *regexp.Regexp
	pack   *regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		dosage: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(` + alternation(dosageUnits) + `)\b`),
		form:   regexp.MustCompile(`\b(` + alternation(forms) + `)S?\b`),
		pack:   regexp.MustCompile(`\b(\d+)\s*S?\s*$`),
	}
}

// Parse never fails; empty input yields an empty ParsedName.
func (p *Parser) Parse(raw string) internal.ParsedName {
	expanded := ExpandAbbreviations(util.CleanBasic(raw))
	if expanded == "" {
		return internal.ParsedName{}
	}

	var spans [][2]int
	var dosages []string
	for _, m := range p.dosage.FindAllStringSubmatchIndex(expanded, -1) {
		dosages = append(dosages, expanded[m[2]:m[3]]+expanded[m[4]:m[5]])
		spans = append(spans, [2]int{m[0], m[1]})
	}

	form := ""
	for _, m := range p.form.FindAllStringSubmatchIndex(expanded, -1) {
		canon := CanonicalForm(expanded[m[2]:m[3]])
		if form == "" {
			form = canon
		}
		if canon == form {
			spans = append(spans, [2]int{m[0], m[1]})
		}
	}

	pack := ""
	if m := p.pack.FindStringSubmatchIndex(expanded); m != nil {
		pack = expanded[m[2]:m[3]]
		spans = append(spans, [2]int{m[0], m[1]})
	}

	working := []byte(expanded)
	for _, s := range spans {
		for i := s[0]; i < s[1]; i++ {
			working[i] = ' '
		}
	}

	tokens := []string{}
	for _, w := range strings.Fields(string(working)) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}

	return internal.ParsedName{
		Tokens:    tokens,
		Dosages:   dosages,
		Form:      form,
		PackSize:  pack,
		CleanText: strings.Join(tokens, " "),
		FullClean: expanded,
	}
}

// ExpandAbbreviations replaces whole words found in the abbreviation table.
func ExpandAbbreviations(cleaned string) string {
	words := strings.Fields(cleaned)
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// CanonicalForm maps a form spelling to its short canonical name.
func CanonicalForm(form string) string {
	form = strings.ToUpper(strings.TrimSpace(form))
	if canon, ok := canonicalForms[form]; ok {
		return canon
	}
	if trimmed := strings.TrimSuffix(form, "S"); trimmed != form {
		switch trimmed {
		case "TAB", "CAP", "SACHET":
			return trimmed
		}
	}
	return form
}

// alternation orders longest first so RE2 leftmost-first picks the full word.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
