package scoring

import (
	"pharmamatch/internal"
)

// Weights are whole percentages so every set sums to exactly 100.
type Weights struct {
	Name      int
	Supplier  int
	ListPrice int
	Cost      int
}

func (w Weights) Sum() int { return w.Name + w.Supplier + w.ListPrice + w.Cost }

var (
	WithListPrice    = Weights{Name: 45, Supplier: 25, ListPrice: 20, Cost: 10}
	WithoutListPrice = Weights{Name: 55, Supplier: 30, ListPrice: 0, Cost: 15}
)

type NameWeights struct {
	Sequence       int
	Levenshtein    int
	Jaccard        int
	Phonetic       int
	ComponentBonus int
}

func (w NameWeights) Sum() int {
	return w.Sequence + w.Levenshtein + w.Jaccard + w.Phonetic + w.ComponentBonus
}

var DefaultNameWeights = NameWeights{Sequence: 25, Levenshtein: 20, Jaccard: 20, Phonetic: 15, ComponentBonus: 20}

func NameScore(s internal.NameSignals) float64 {
	w := DefaultNameWeights
	total := float64(w.Sequence)*s.Sequence +
		float64(w.Levenshtein)*s.Levenshtein +
		float64(w.Jaccard)*s.Jaccard +
		float64(w.Phonetic)*s.Phonetic +
		float64(w.ComponentBonus)*s.ComponentBonus
	return total / 100
}

// Fuse picks the weight set by list price availability and clamps to [0,1].
func Fuse(name float64, b internal.BusinessSignals) float64 {
	w := WithoutListPrice
	if b.HasListPrice {
		w = WithListPrice
	}
	total := float64(w.Name)*name +
		float64(w.Supplier)*b.Supplier +
		float64(w.ListPrice)*b.ListPrice +
		float64(w.Cost)*b.Cost
	return clamp01(total / 100)
}

type Thresholds struct {
	AutoOK float64
	Check  float64
}

var DefaultThresholds = Thresholds{AutoOK: 0.80, Check: 0.60}

func (t Thresholds) Classify(final float64) internal.Tier {
	switch {
	case final >= t.AutoOK:
		return internal.TierAutoOK
	case final >= t.Check:
		return internal.TierCheck
	default:
		return internal.TierNoMatch
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
