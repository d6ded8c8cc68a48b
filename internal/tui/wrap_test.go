package tui

import (
	"strings"
	"testing"
)

func plain(s string) string { return s }

func TestWrapWordsBreaksOnSpaces(t *testing.T) {
	out := wrapWords("Aurora loves to practice math problems", 12, plain)
	lines := strings.Split(out, "\n")
	want := []string{"Aurora loves", "to practice", "math", "problems"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapWordsLongWordKeepsOwnLine(t *testing.T) {
	out := wrapWords("a extraordinarily b", 5, plain)
	if out != "a\nextraordinarily\nb" {
		t.Fatalf("unexpected wrap %q", out)
	}
}

func TestWrapWordsAppliesStyleAndIgnoresWidthZero(t *testing.T) {
	out := wrapWords("one  two", 0, func(s string) string { return "[" + s + "]" })
	if out != "[one] [two]" {
		t.Fatalf("unexpected output %q", out)
	}
	if wrapWords("   ", 10, plain) != "" {
		t.Fatalf("expected empty output for blank text")
	}
}
