package worksheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/mathdrill/internal/arith"
	"github.com/verte-zerg/mathdrill/internal/rng"
)

func TestBuildUsesGeneratorConfig(t *testing.T) {
	gen := arith.New(rng.NewSeeded(5))
	ops := []arith.Operation{arith.Multiplication, arith.Division}
	if err := gen.Configure(ops, arith.RangeConfig{MultiplicationMax: 6, AdditionMagnitude: arith.Ones}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	sheet, err := Build(gen, 12)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sheet.Title != "Multiplication & Division Practice" {
		t.Fatalf("unexpected title %q", sheet.Title)
	}
	if len(sheet.Problems) != 12 {
		t.Fatalf("expected 12 problems, got %d", len(sheet.Problems))
	}
	for _, p := range sheet.Problems {
		if p.Operation != arith.Multiplication && p.Operation != arith.Division {
			t.Fatalf("unexpected operation %s", p.Operation)
		}
		if p.Operation.Apply(p.Operands[0], p.Operands[1]) != p.Answer {
			t.Fatalf("answer mismatch for %s", p.DisplayText)
		}
	}
}

func TestBuildRejectsBadCount(t *testing.T) {
	gen := arith.New(rng.NewSeeded(1))
	if _, err := Build(gen, 0); !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("expected ErrEmptySheet, got %v", err)
	}
	if _, err := Build(gen, MaxProblems+1); err == nil {
		t.Fatalf("expected error above the limit")
	}
}

func TestWriteProducesPDF(t *testing.T) {
	gen := arith.New(rng.NewSeeded(9))
	sheet, err := Build(gen, 25)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	opts := DefaultOptions()
	opts.Name = "Mia"
	if err := Write(path, sheet, opts); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF header")
	}

	if err := Write(filepath.Join(t.TempDir(), "empty.pdf"), Sheet{}, opts); !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("expected ErrEmptySheet, got %v", err)
	}
}
