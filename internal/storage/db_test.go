package storage

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"pharmamatch/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "learning.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestUpsertMappingReinforces(t *testing.T) {
	db := openTestDB(t)
	supplier := strPtr("AL MAQAM")

	first, err := db.UpsertMapping("Paracet 500 Tab", "PARACETAMOL 500 TAB", supplier, "P1", "PARACETAMOL 500MG TAB 20S", 0.90)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.Confidence != 0.90 || first.TimesSeen != 1 || first.TimesConfirmed != 1 {
		t.Fatalf("first=%+v", first)
	}

	second, err := db.UpsertMapping("Paracet 500 Tab", "PARACETAMOL 500 TAB", supplier, "P1", "PARACETAMOL 500MG TAB 20S", 0.90)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got %d and %d", first.ID, second.ID)
	}
	if math.Abs(second.Confidence-0.92) > 1e-9 || second.TimesSeen != 2 || second.TimesConfirmed != 2 {
		t.Fatalf("second=%+v", second)
	}

	var last internal.LearnedMapping
	for i := 0; i < 10; i++ {
		last, err = db.UpsertMapping("Paracet 500 Tab", "PARACETAMOL 500 TAB", supplier, "P1", "PARACETAMOL 500MG TAB 20S", 0.90)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if last.Confidence != MaxConfidence {
		t.Fatalf("confidence should cap at %v, got %v", MaxConfidence, last.Confidence)
	}
}

func TestUpsertMappingSeparatesSupplierAndNull(t *testing.T) {
	db := openTestDB(t)

	a, err := db.UpsertMapping("X", "X", nil, "P1", "ONE", 0.90)
	if err != nil {
		t.Fatal(err)
	}
	b, err := db.UpsertMapping("X", "X", strPtr("ACME"), "P1", "ONE", 0.90)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Fatal("null supplier and named supplier must be distinct rows")
	}
	if a.SupplierPattern != nil || b.SupplierPattern == nil || *b.SupplierPattern != "ACME" {
		t.Fatalf("supplier patterns: %v %v", a.SupplierPattern, b.SupplierPattern)
	}

	c, err := db.UpsertMapping("X", "X", nil, "P1", "ONE", 0.90)
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != a.ID || c.TimesConfirmed != 2 {
		t.Fatalf("null supplier row should be reinforced: %+v", c)
	}
}

func TestLookupMapping(t *testing.T) {
	db := openTestDB(t)

	if m, err := db.LookupMapping("NOTHING", "", 0.85); err != nil || m != nil {
		t.Fatalf("empty store: %v %v", m, err)
	}

	if _, err := db.UpsertMapping("A", "A", nil, "GENERIC", "Generic", 0.95); err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertMapping("A", "A", strPtr("ACME"), "SPECIFIC", "Specific", 0.90); err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertMapping("B", "B", nil, "LOW", "Low", 0.50); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name, pattern, supplier string
		wantCode                string
	}{
		{"supplier specific wins", "A", "ACME", "SPECIFIC"},
		{"other supplier falls back to null", "A", "OTHER", "GENERIC"},
		{"no supplier takes highest confidence", "A", "", "GENERIC"},
		{"below threshold", "B", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := db.LookupMapping(tc.pattern, tc.supplier, 0.85)
			if err != nil {
				t.Fatal(err)
			}
			got := ""
			if m != nil {
				got = m.ItemCode
			}
			if got != tc.wantCode {
				t.Fatalf("got %q want %q", got, tc.wantCode)
			}
		})
	}
}

func TestCorrectionsAndStats(t *testing.T) {
	db := openTestDB(t)
	fixed := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	db.SetClock(func() time.Time { return fixed })

	stats, err := db.Stats(0.95)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalMappings != 0 || stats.TotalCorrections != 0 || stats.LastCorrectionAt != nil {
		t.Fatalf("empty stats=%+v", stats)
	}

	score := 0.7
	if err := db.AppendCorrection(internal.CorrectionRecord{
		InvoiceNo:       "INV-1",
		LineNo:          "1",
		InvoiceItemName: "Paracet 500 Tab",
		Supplier:        "AL MAQAM",
		SuggestedCode:   "P2",
		SuggestedScore:  &score,
		CorrectedCode:   "P1",
		CorrectedName:   "PARACETAMOL 500MG TAB 20S",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertMapping("A", "A", nil, "P1", "One", 0.96); err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertMapping("B", "B", nil, "P2", "Two", 0.90); err != nil {
		t.Fatal(err)
	}

	stats, err = db.Stats(0.95)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalMappings != 2 || stats.HighConfidenceMappings != 1 || stats.TotalCorrections != 1 {
		t.Fatalf("stats=%+v", stats)
	}
	if stats.LastCorrectionAt == nil || !stats.LastCorrectionAt.Equal(fixed) {
		t.Fatalf("last correction=%v", stats.LastCorrectionAt)
	}

	all, err := db.ListMappings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ItemCode != "P1" {
		t.Fatalf("mappings=%+v", all)
	}
	if !all[0].LearnedAt.Equal(fixed) {
		t.Fatalf("learned at=%v", all[0].LearnedAt)
	}
}

func TestRunsAndMetadata(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertRun("run-1", "invoice.xlsx", map[string]float64{"match": 0.2}, map[string]int{"total": 3}); err != nil {
		t.Fatal(err)
	}
	n, err := db.CountRuns()
	if err != nil || n != 1 {
		t.Fatalf("runs=%d err=%v", n, err)
	}

	v, err := db.GetMetadata("missing")
	if err != nil || v != nil {
		t.Fatalf("missing key: %v %v", v, err)
	}
	if err := db.SetMetadata("last_run_id", "run-1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("last_run_id", "run-2"); err != nil {
		t.Fatal(err)
	}
	v, err = db.GetMetadata("last_run_id")
	if err != nil || v == nil || *v != "run-2" {
		t.Fatalf("metadata=%v err=%v", v, err)
	}
}
