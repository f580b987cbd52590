package catalog

import (
	"reflect"
	"testing"
)

func TestCharWBNgrams(t *testing.T) {
	got := charWBNgrams("ab", 1, 2)
	want := []string{" ", "a", "b", " ", " a", "ab", "b "}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}

	short := charWBNgrams("A", 1, 3)
	if len(short) != 6 || short[5] != " a " {
		t.Fatalf("short word ngrams=%q", short)
	}
}

func TestTFIDFTopK(t *testing.T) {
	tf := NewTFIDF([]string{"IBUPROFEN", "PARACETAMOL", "PARACETAMOL CAFFEINE", "AMOXICILLIN"}, 1, 3)

	scores := tf.Scores("PARACETAMOL")
	if scores[1] < 0.999 {
		t.Fatalf("self similarity=%v", scores[1])
	}

	top := tf.TopK("PARACETMOL", 2)
	if !reflect.DeepEqual(top, []int{1, 2}) {
		t.Fatalf("top=%v", top)
	}
}

func TestTFIDFEdgeCases(t *testing.T) {
	tf := NewTFIDF([]string{"ALPHA", "BETA"}, 1, 3)
	if got := tf.TopK("   ", 5); got != nil {
		t.Fatalf("empty query returned %v", got)
	}
	if got := tf.TopK("ZZZ", 5); len(got) != 2 {
		t.Fatalf("got %v", got)
	}

	tie := NewTFIDF([]string{"SAME", "OTHER", "SAME"}, 1, 3)
	if got := tie.TopK("SAME", 2); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Fatalf("ties should keep corpus order, got %v", got)
	}
}
