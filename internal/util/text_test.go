package util

import "testing"

func TestCleanBasic(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Paracet 500 mg tablets 20's", "PARACET 500 MG TABLETS 20 S"},
		{"  amoxi/clav (625mg)  ", "AMOXI CLAV 625MG"},
		{"Vit-D3 1,000 IU*30", "VIT D3 1 000 IU 30"},
		{"Salbutamol 2.5MG/2.5ML", "SALBUTAMOL 2.5MG 2.5ML"},
		{"Café & crème", "CAFE CREME"},
		{"END.", "END"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanBasic(tc.in); got != tc.want {
			t.Fatalf("CleanBasic(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestSimplifySupplier(t *testing.T) {
	cases := map[string]string{
		"Al Maqam Pharmacy Stores LLC": "AL MAQAM",
		"muscat-pharmacy":              "MUSCAT PHARMACY",
		"Solo":                         "SOLO",
		"":                             "",
	}
	for in, want := range cases {
		if got := SimplifySupplier(in); got != want {
			t.Fatalf("SimplifySupplier(%q)=%q want %q", in, got, want)
		}
	}
}

func TestNormalizeColumn(t *testing.T) {
	if got := NormalizeColumn(" Unit_Price_Invoice "); got != "unit price invoice" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeColumn("B.Rate"); got != "b rate" {
		t.Fatalf("got %q", got)
	}
}
