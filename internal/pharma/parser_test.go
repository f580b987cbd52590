package pharma

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	p := NewParser()
	cases := []struct {
		name    string
		in      string
		tokens  []string
		dosages []string
		form    string
		pack    string
		full    string
	}{
		{
			name:    "invoice spelling",
			in:      "PARACET 500 MG TABLETS 20'S",
			tokens:  []string{"PARACETAMOL"},
			dosages: []string{"500MG"},
			form:    "TAB",
			pack:    "20",
			full:    "PARACETAMOL 500 MG TABLETS 20 S",
		},
		{
			name:    "catalog spelling",
			in:      "PARACETAMOL 500MG TAB 20S",
			tokens:  []string{"PARACETAMOL"},
			dosages: []string{"500MG"},
			form:    "TAB",
			pack:    "20",
			full:    "PARACETAMOL 500MG TAB 20S",
		},
		{
			name:    "combination with decimals",
			in:      "Amoxi/Clav 500mg/125mg caps",
			tokens:  []string{"AMOXICILLIN", "CLAVULANIC"},
			dosages: []string{"500MG", "125MG"},
			form:    "CAP",
			full:    "AMOXICILLIN CLAVULANIC 500MG 125MG CAPS",
		},
		{
			name:    "stopwords and syrup",
			in:      "Vit C Extra Syrup 2.5 ml",
			tokens:  []string{"VITAMIN", "C"},
			dosages: []string{"2.5ML"},
			form:    "SYRUP",
			full:    "VITAMIN C EXTRA SYRUP 2.5 ML",
		},
		{
			name:   "digit inside word is not a pack",
			in:     "Vitamin D3",
			tokens: []string{"VITAMIN", "D3"},
			full:   "VITAMIN D3",
		},
		{
			name:   "unit prefix of a word is not a dosage",
			in:     "Diclo 5 Gel",
			tokens: []string{"DICLOFENAC", "5"},
			form:   "GEL",
			full:   "DICLOFENAC 5 GEL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Parse(tc.in)
			if !reflect.DeepEqual(got.Tokens, tc.tokens) {
				t.Fatalf("tokens=%v want %v", got.Tokens, tc.tokens)
			}
			if len(got.Dosages) != len(tc.dosages) || (len(tc.dosages) > 0 && !reflect.DeepEqual(got.Dosages, tc.dosages)) {
				t.Fatalf("dosages=%v want %v", got.Dosages, tc.dosages)
			}
			if got.Form != tc.form {
				t.Fatalf("form=%q want %q", got.Form, tc.form)
			}
			if got.PackSize != tc.pack {
				t.Fatalf("pack=%q want %q", got.PackSize, tc.pack)
			}
			if got.FullClean != tc.full {
				t.Fatalf("full=%q want %q", got.FullClean, tc.full)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	got := NewParser().Parse("  ** ")
	if got.FullClean != "" || len(got.Tokens) != 0 || got.CleanText != "" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestCanonicalForm(t *testing.T) {
	cases := map[string]string{
		"TABLETS": "TAB", "tabs": "TAB", "CAPSULE": "CAP", "SACHETS": "SACHET",
		"INJECTION": "INJ", "SUPPOSITORY": "SUPP", "SYRUP": "SYRUP", "DROPS": "DROPS",
	}
	for in, want := range cases {
		if got := CanonicalForm(in); got != want {
			t.Fatalf("CanonicalForm(%q)=%q want %q", in, got, want)
		}
	}
}
