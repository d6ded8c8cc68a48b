package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/mathdrill/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	ppm, acc := SessionMetrics(10, 2, 120000)
	if math.Abs(ppm-5) > 1e-9 {
		t.Fatalf("expected 5 problems/min, got %f", ppm)
	}
	if math.Abs(acc-10.0/12.0) > 1e-9 {
		t.Fatalf("unexpected accuracy %f", acc)
	}
	if ppm, acc := SessionMetrics(3, 1, 0); ppm != 0 || acc != 0.75 {
		t.Fatalf("zero duration should keep accuracy, got %f %f", ppm, acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	if same := MovingAverage([]float64{1, 9}, 1); same[1] != 9 {
		t.Fatalf("window 1 should copy values")
	}
}

func TestSparkline(t *testing.T) {
	line := Sparkline([]float64{0, 5, 10})
	runes := []rune(line)
	if len(runes) != 3 || runes[0] != '▁' || runes[2] != '█' {
		t.Fatalf("unexpected sparkline %q", line)
	}
	flat := Sparkline([]float64{3, 3, 3, 3})
	if utf8.RuneCountInString(flat) != 4 || strings.Count(flat, string(sparkRunes[len(sparkRunes)/2])) != 4 {
		t.Fatalf("flat series should use the middle block, got %q", flat)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestResample(t *testing.T) {
	if got := Resample([]float64{1, 2, 3, 4}, 2); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected shrink %v", got)
	}
	if got := Resample([]float64{1, 2}, 4); len(got) != 4 || got[3] != 2 {
		t.Fatalf("unexpected stretch %v", got)
	}
}

func TestRenderCurvesFitsWidth(t *testing.T) {
	sessions := make([]model.SessionAggregate, 200)
	for i := range sessions {
		sessions[i] = model.SessionAggregate{Correct: 10, Incorrect: i % 4, DurationMs: 60000}
	}
	var buf bytes.Buffer
	if err := RenderCurves(&buf, sessions, 5, 60); err != nil {
		t.Fatalf("render curves: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if w := utf8.RuneCountInString(line); w > 60 {
			t.Fatalf("line wider than 60 columns (%d): %q", w, line)
		}
	}
	if !strings.Contains(buf.String(), "Accuracy") || !strings.Contains(buf.String(), "Problems/min") {
		t.Fatalf("missing curve labels:\n%s", buf.String())
	}
}

func TestRenderOpTableOrdersWeakestFirst(t *testing.T) {
	var buf bytes.Buffer
	err := RenderOpTable(&buf, []model.OpAggregate{
		{Operation: "addition", Correct: 9, Incorrect: 1, LatencySumMs: 9000, LatencyCount: 9},
		{Operation: "division", Correct: 5, Incorrect: 5, LatencySumMs: 20000, LatencyCount: 5},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 || !strings.HasPrefix(lines[2], "Division") || !strings.HasPrefix(lines[3], "Addition") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "50.00%") || !strings.Contains(lines[2], "4.0") {
		t.Fatalf("unexpected division row %q", lines[2])
	}
}

func TestWeakestOperations(t *testing.T) {
	aggs := []model.OpAggregate{
		{Operation: "addition", Correct: 9, Incorrect: 1},
		{Operation: "division", Correct: 3, Incorrect: 3},
		{Operation: "subtraction", Correct: 1, Incorrect: 1},
		{Operation: "multiplication", Correct: 20},
	}
	weak := WeakestOperations(aggs, 5)
	if len(weak) != 2 || weak[0] != "division" || weak[1] != "addition" {
		t.Fatalf("unexpected weak operations %v", weak)
	}
	if top := WeakestOperations(aggs, 1); len(top) != 1 || top[0] != "division" {
		t.Fatalf("unexpected top weak operation %v", top)
	}
}
