// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verte-zerg/mathdrill/internal/model"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// SessionMetrics computes problems solved per minute and accuracy (0-1).
func SessionMetrics(correct, incorrect int, durationMs int64) (ppm, accuracy float64) {
	if den := float64(correct + incorrect); den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	return float64(correct) / minutes, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders values as a single line of block characters, scaled
// between the series minimum and maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkRunes[len(sparkRunes)/2]), len(values))
	}
	var b strings.Builder
	top := float64(len(sparkRunes) - 1)
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * top))
		idx = max(0, min(idx, len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// Resample stretches or shrinks values to width points by nearest sampling.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) == 0 || len(values) == width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := range out {
		src := i * len(values) / width
		out[i] = values[src]
	}
	return out
}

// OperationLabel title-cases an operation name for display.
func OperationLabel(op string) string {
	return cases.Title(language.English).String(op)
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalPPM, totalAcc, bestPPM float64
	succeeded, rewards := 0, 0
	for _, s := range sessions {
		ppm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalPPM += ppm
		totalAcc += acc
		bestPPM = math.Max(bestPPM, ppm)
		if s.Outcome == model.OutcomeSucceeded {
			succeeded++
		}
		if s.RewardID != "" {
			rewards++
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Completed: %d", succeeded),
		fmt.Sprintf("Rewards earned: %d", rewards),
		fmt.Sprintf("Avg problems/min: %.2f", totalPPM/count),
		fmt.Sprintf("Best problems/min: %.2f", bestPPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints accuracy and speed sparklines smoothed over window
// sessions. A width of 0 uses the terminal width.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	ppms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		ppm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		ppms[i] = ppm
		accs[i] = acc * 100
	}
	accs = MovingAverage(accs, window)
	ppms = MovingAverage(ppms, window)

	if width <= 0 {
		width = TerminalWidth(w)
	}
	const labelWidth = len("Problems/min ")
	const valueWidth = len(" 100.0%")
	sparkWidth := max(minSparkWidth, width-labelWidth-valueWidth)
	if len(sessions) < sparkWidth {
		sparkWidth = len(sessions)
	}

	rows := [][]string{
		{"Accuracy", Sparkline(Resample(accs, sparkWidth)), fmt.Sprintf("%.1f%%", accs[len(accs)-1])},
		{"Problems/min", Sparkline(Resample(ppms, sparkWidth)), fmt.Sprintf("%.1f", ppms[len(ppms)-1])},
	}
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", window); err != nil {
		return err
	}
	for _, line := range formatTable(nil, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderOpTable prints per-operation aggregates, weakest first.
func RenderOpTable(w io.Writer, aggs []model.OpAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No operation stats found.")
		return err
	}
	sorted := append([]model.OpAggregate(nil), aggs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := opAccuracy(sorted[i]), opAccuracy(sorted[j])
		if ai == aj {
			return sorted[i].Operation < sorted[j].Operation
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Operation"); err != nil {
		return err
	}
	headers := []string{"Operation", "Accuracy", "Avg Time (s)", "Correct", "Incorrect"}
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		avg := 0.0
		if agg.LatencyCount > 0 {
			avg = float64(agg.LatencySumMs) / float64(agg.LatencyCount) / 1000
		}
		rows = append(rows, []string{
			OperationLabel(agg.Operation),
			fmt.Sprintf("%.2f%%", opAccuracy(agg)*100),
			fmt.Sprintf("%.1f", avg),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
