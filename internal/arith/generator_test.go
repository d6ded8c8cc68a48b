package arith

import (
	"errors"
	"testing"

	"github.com/verte-zerg/mathdrill/internal/rng"
)

func newConfigured(t *testing.T, seed uint64, ops []Operation, ranges RangeConfig) *Generator {
	t.Helper()
	gen := New(rng.NewSeeded(seed))
	if err := gen.Configure(ops, ranges); err != nil {
		t.Fatalf("configure: %v", err)
	}
	return gen
}

func TestMultiplicationOperandsStayInTables(t *testing.T) {
	for max := MinMultiplicationMax; max <= MaxMultiplicationMax; max++ {
		gen := newConfigured(t, uint64(max), []Operation{Multiplication}, RangeConfig{MultiplicationMax: max, AdditionMagnitude: Tens})
		for i := 0; i < 1000; i++ {
			p := gen.Generate()
			a, b := p.Operands[0], p.Operands[1]
			inTable := func(index, factor int) bool {
				return index >= 0 && index <= TableIndexMax && factor >= 1 && factor <= max
			}
			if !inTable(a, b) && !inTable(b, a) {
				t.Fatalf("max=%d: operands %v outside table ranges", max, p.Operands)
			}
			if p.Answer != a*b {
				t.Fatalf("max=%d: answer %d != %d*%d", max, p.Answer, a, b)
			}
		}
	}
}

func TestMultiplicationCoversTableIndexAndOrderings(t *testing.T) {
	gen := newConfigured(t, 3, []Operation{Multiplication}, RangeConfig{MultiplicationMax: 12, AdditionMagnitude: Tens})
	// Track which index values show up; with max=12 both operands share a
	// range, so also check zero appears in each position.
	seen := map[int]bool{}
	zeroFirst, zeroSecond := false, false
	for i := 0; i < 2000; i++ {
		p := gen.Generate()
		if p.Answer != p.Operands[0]*p.Operands[1] {
			t.Fatalf("answer mismatch for %v", p.Operands)
		}
		seen[p.Operands[0]] = true
		seen[p.Operands[1]] = true
		if p.Operands[0] == 0 {
			zeroFirst = true
		}
		if p.Operands[1] == 0 {
			zeroSecond = true
		}
	}
	for v := 0; v <= TableIndexMax; v++ {
		if !seen[v] {
			t.Fatalf("table index %d never generated", v)
		}
	}
	if !zeroFirst || !zeroSecond {
		t.Fatalf("expected the table index in both positions (first=%v second=%v)", zeroFirst, zeroSecond)
	}
}

func TestDivisionIsRemainderFree(t *testing.T) {
	gen := newConfigured(t, 11, []Operation{Division}, RangeConfig{MultiplicationMax: 9, AdditionMagnitude: Ones})
	for i := 0; i < 1000; i++ {
		p := gen.Generate()
		dividend, divisor := p.Operands[0], p.Operands[1]
		if divisor < 1 || divisor > 9 {
			t.Fatalf("divisor %d outside [1,9]", divisor)
		}
		if p.Answer < 1 || p.Answer > 9 {
			t.Fatalf("quotient %d outside [1,9]", p.Answer)
		}
		if divisor*p.Answer != dividend {
			t.Fatalf("%d * %d != %d", divisor, p.Answer, dividend)
		}
	}
}

func TestSubtractionNeverNegative(t *testing.T) {
	gen := newConfigured(t, 5, []Operation{Subtraction}, RangeConfig{MultiplicationMax: 12, AdditionMagnitude: Hundreds})
	for i := 0; i < 1000; i++ {
		p := gen.Generate()
		if p.Answer < 0 {
			t.Fatalf("negative answer for %s", p.DisplayText)
		}
		if p.Operands[0] < p.Operands[1] || p.Answer != p.Operands[0]-p.Operands[1] {
			t.Fatalf("bad subtraction %v -> %d", p.Operands, p.Answer)
		}
	}
}

func TestAdditionUsesMagnitudeBounds(t *testing.T) {
	for _, m := range []Magnitude{Ones, Tens, Hundreds} {
		lo, hi := m.Bounds()
		gen := newConfigured(t, 9, []Operation{Addition}, RangeConfig{MultiplicationMax: 12, AdditionMagnitude: m})
		for i := 0; i < 500; i++ {
			p := gen.Generate()
			for _, v := range p.Operands {
				if v < lo || v > hi {
					t.Fatalf("%s: operand %d outside [%d,%d]", m, v, lo, hi)
				}
			}
			if p.Answer != p.Operands[0]+p.Operands[1] {
				t.Fatalf("%s: bad sum for %v", m, p.Operands)
			}
		}
	}
}

func TestGenerateSelectsEveryConfiguredOperation(t *testing.T) {
	gen := newConfigured(t, 21, AllOperations(), DefaultRanges())
	counts := map[Operation]int{}
	for i := 0; i < 400; i++ {
		p := gen.Generate()
		counts[p.Operation]++
		if p.Answer != p.Operation.Apply(p.Operands[0], p.Operands[1]) {
			t.Fatalf("answer not reproducible for %s", p.DisplayText)
		}
	}
	for _, op := range AllOperations() {
		if counts[op] == 0 {
			t.Fatalf("operation %s never selected", op)
		}
	}
}

func TestValidateBeforeGenerate(t *testing.T) {
	gen := New(rng.NewSeeded(1))
	if _, err := gen.Validate(4); !errors.Is(err, ErrNoActiveProblem) {
		t.Fatalf("expected ErrNoActiveProblem, got %v", err)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	gen := New(rng.NewSeeded(2))
	p := gen.Generate()
	for _, candidate := range []int{p.Answer, p.Answer + 1} {
		first, err := gen.Validate(candidate)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		second, err := gen.Validate(candidate)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if first != second {
			t.Fatalf("validate changed between calls: %+v vs %+v", first, second)
		}
		if first.IsCorrect != (candidate == p.Answer) || first.CorrectAnswer != p.Answer || first.ProblemID != p.ID {
			t.Fatalf("unexpected result %+v for candidate %d", first, candidate)
		}
	}
	if cur, ok := gen.Current(); !ok || cur.ID != p.ID {
		t.Fatalf("validate must not advance the current problem")
	}
}

func TestConfigureRejectsAndKeepsPrevious(t *testing.T) {
	gen := New(rng.NewSeeded(4))
	cases := []struct {
		name   string
		ops    []Operation
		ranges RangeConfig
	}{
		{"empty ops", nil, DefaultRanges()},
		{"unknown op", []Operation{Operation(9)}, DefaultRanges()},
		{"max too low", []Operation{Addition}, RangeConfig{MultiplicationMax: 4, AdditionMagnitude: Tens}},
		{"max too high", []Operation{Addition}, RangeConfig{MultiplicationMax: 21, AdditionMagnitude: Tens}},
		{"bad magnitude", []Operation{Addition}, RangeConfig{MultiplicationMax: 12}},
	}
	for _, tc := range cases {
		if err := gen.Configure(tc.ops, tc.ranges); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%s: expected ErrInvalidConfiguration, got %v", tc.name, err)
		}
		ops, ranges := gen.Config()
		if len(ops) != 1 || ops[0] != Multiplication || ranges != DefaultRanges() {
			t.Fatalf("%s: configuration partially applied: %v %+v", tc.name, ops, ranges)
		}
	}
}

func TestConfigureCollapsesDuplicatesAndKeepsCurrent(t *testing.T) {
	gen := New(rng.NewSeeded(6))
	p := gen.Generate()
	if err := gen.Configure([]Operation{Addition, Addition, Division}, RangeConfig{MultiplicationMax: 5, AdditionMagnitude: Ones}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	ops, _ := gen.Config()
	if len(ops) != 2 {
		t.Fatalf("expected 2 distinct ops, got %v", ops)
	}
	if cur, _ := gen.Current(); cur.ID != p.ID {
		t.Fatalf("configure must not regenerate the current problem")
	}
}

func TestDisplayTextAndIDs(t *testing.T) {
	gen := New(rng.NewSequence(0.0, 0.5, 0.5, 0.0))
	p := gen.Generate()
	want := "6 × 7 = ?"
	if p.DisplayText != want {
		t.Fatalf("expected %q, got %q", want, p.DisplayText)
	}
	q := gen.Generate()
	if p.ID == "" || p.ID == q.ID {
		t.Fatalf("expected unique non-empty ids, got %q and %q", p.ID, q.ID)
	}
}

func TestParseHelpers(t *testing.T) {
	ops, err := ParseOperations([]string{"add", "÷", " multiplication ", ""})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ops) != 3 || ops[0] != Addition || ops[1] != Division || ops[2] != Multiplication {
		t.Fatalf("unexpected ops %v", ops)
	}
	for _, op := range AllOperations() {
		if got, err := ParseOperation(op.Symbol()); err != nil || got != op {
			t.Fatalf("symbol %q: expected %s, got %v %v", op.Symbol(), op, got, err)
		}
	}
	if Subtraction.Symbol() != "−" {
		t.Fatalf("expected a minus sign, got %q", Subtraction.Symbol())
	}
	if got, err := ParseOperation("-"); err != nil || got != Subtraction {
		t.Fatalf("expected ascii hyphen to parse as subtraction, got %v %v", got, err)
	}
	if _, err := ParseOperation("modulo"); err == nil {
		t.Fatalf("expected error for unknown operation")
	}
	if m, err := ParseMagnitude("Hundreds"); err != nil || m != Hundreds {
		t.Fatalf("expected hundreds, got %v %v", m, err)
	}
}
