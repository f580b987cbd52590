package similarity

import "strings"

var consonantGroups = map[rune]rune{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// PhoneticCode keeps the first letter and appends consonant group digits.
// Letters outside the groups are skipped and do not break a run of equal digits.
func PhoneticCode(word string) string {
	rs := []rune(strings.ToUpper(word))
	if len(rs) == 0 {
		return ""
	}
	code := []rune{rs[0]}
	var prev rune
	for _, r := range rs[1:] {
		digit, ok := consonantGroups[r]
		if !ok || digit == prev {
			continue
		}
		code = append(code, digit)
		prev = digit
	}
	code = append(code, '0', '0', '0')
	return string(code[:4])
}

// Phonetic is the share of query word codes found among candidate word codes.
func Phonetic(a, b string) float64 {
	wordsA := strings.Fields(strings.ToUpper(a))
	wordsB := strings.Fields(strings.ToUpper(b))
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	codesB := map[string]struct{}{}
	for _, w := range wordsB {
		codesB[PhoneticCode(w)] = struct{}{}
	}
	matches := 0
	for _, w := range wordsA {
		if _, ok := codesB[PhoneticCode(w)]; ok {
			matches++
		}
	}
	return float64(matches) / float64(max(len(wordsA), len(wordsB)))
}
