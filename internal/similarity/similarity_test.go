package similarity

import (
	"math"
	"testing"

	"pharmamatch/internal"
	"pharmamatch/internal/pharma"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestPhoneticCode(t *testing.T) {
	cases := map[string]string{
		"PARACETAMOL": "P623",
		"paracetmol":  "P623",
		"ROBERT":      "R163",
		"TYMCZAK":     "T520",
		"A":           "A000",
		"":            "",
	}
	for in, want := range cases {
		if got := PhoneticCode(in); got != want {
			t.Fatalf("PhoneticCode(%q)=%q want %q", in, got, want)
		}
	}
}

func TestPhonetic(t *testing.T) {
	if got := Phonetic("PARACETAMOL CAFFEINE", "PARACETMOL"); got != 0.5 {
		t.Fatalf("got %v", got)
	}
	if got := Phonetic("", "X"); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestSequenceRatio(t *testing.T) {
	if got := SequenceRatio("PARACETAMOL 500 MG TABLETS 20 S", "PARACETAMOL 500MG TAB 20S"); !near(got, 50.0/56.0) {
		t.Fatalf("got %v", got)
	}
	if got := SequenceRatio("ABCD", "BCDA"); got != 0.75 {
		t.Fatalf("got %v", got)
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	if got := LevenshteinSimilarity("KITTEN", "SITTING"); !near(got, 1-3.0/7.0) {
		t.Fatalf("got %v", got)
	}
	if got := LevenshteinSimilarity("", "ABC"); got != 0 {
		t.Fatalf("empty side should score 0, got %v", got)
	}
}

func TestJaccard(t *testing.T) {
	if got := Jaccard([]string{"A", "B", "B"}, []string{"B", "C"}); !near(got, 1.0/3.0) {
		t.Fatalf("got %v", got)
	}
	if got := Jaccard(nil, []string{"A"}); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestComponentBonus(t *testing.T) {
	cases := []struct {
		name string
		q, c internal.ParsedName
		want float64
	}{
		{"dosage and form", internal.ParsedName{Dosages: []string{"500MG"}, Form: "TAB"}, internal.ParsedName{Dosages: []string{"500MG"}, Form: "TAB"}, 0.4},
		{"half dosage overlap", internal.ParsedName{Dosages: []string{"500MG", "125MG"}}, internal.ParsedName{Dosages: []string{"500MG"}}, 0.15},
		{"form only", internal.ParsedName{Form: "CAP"}, internal.ParsedName{Form: "CAP"}, 0.1},
		{"form missing both sides", internal.ParsedName{}, internal.ParsedName{}, 0},
		{"different dosage", internal.ParsedName{Dosages: []string{"250MG"}, Form: "TAB"}, internal.ParsedName{Dosages: []string{"500MG"}, Form: "CAP"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComponentBonus(tc.q, tc.c); !near(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestCompareParsedNames(t *testing.T) {
	p := pharma.NewParser()
	s := Compare(p.Parse("PARACET 500 MG TABLETS 20'S"), p.Parse("PARACETAMOL 500MG TAB 20S"))
	if s.Levenshtein != 1 || s.Jaccard != 1 || s.Phonetic != 1 || !near(s.ComponentBonus, 0.4) {
		t.Fatalf("signals=%+v", s)
	}
	if got := Details(s); got != "Seq:0.89 Lev:1.00 Jac:1.00 Pho:1.00 Cmp:0.40" {
		t.Fatalf("details=%q", got)
	}
}
