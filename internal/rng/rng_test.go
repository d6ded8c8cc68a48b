package rng

import "testing"

func TestSeededIsReproducible(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %f vs %f", i, x, y)
		}
	}
}

func TestBetweenCoversBounds(t *testing.T) {
	src := NewSeeded(42)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := Between(src, 3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("value %d out of [3,7]", v)
		}
		seen[v] = true
	}
	for v := 3; v <= 7; v++ {
		if !seen[v] {
			t.Fatalf("value %d never drawn", v)
		}
	}
}

func TestSequenceWrapsAndClamps(t *testing.T) {
	seq := NewSequence(0.25, 1.5, -1)
	want := []float64{0.25, 1 - 1e-12, 0, 0.25}
	for i, w := range want {
		if got := seq.Float64(); got != w {
			t.Fatalf("step %d: expected %v, got %v", i, w, got)
		}
	}
	if got := Intn(NewSequence(0.999999), 4); got != 3 {
		t.Fatalf("expected top index 3, got %d", got)
	}
	if got := Intn(NewSequence(0.5), 0); got != 0 {
		t.Fatalf("expected 0 for empty range, got %d", got)
	}
}
