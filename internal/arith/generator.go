package arith

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/verte-zerg/mathdrill/internal/rng"
)

var (
	ErrInvalidConfiguration = errors.New("invalid generator configuration")
	ErrNoActiveProblem      = errors.New("no active problem")
)

// Generator produces arithmetic problems and validates answers against the
// most recently generated one. A Generator belongs to a single session and
// is not safe for concurrent use.
type Generator struct {
	src    rng.Source
	ops    []Operation
	ranges RangeConfig

	current    Problem
	hasCurrent bool
}

// DefaultRanges returns the ranges used before any Configure call.
func DefaultRanges() RangeConfig {
	return RangeConfig{MultiplicationMax: 12, AdditionMagnitude: Tens}
}

// New returns a Generator drilling multiplication up to the 12 table.
// A nil src is replaced with a time-seeded source.
func New(src rng.Source) *Generator {
	if src == nil {
		src = rng.New()
	}
	return &Generator{
		src:    src,
		ops:    []Operation{Multiplication},
		ranges: DefaultRanges(),
	}
}

// Configure replaces the operation set and ranges. Nothing changes when the
// input is rejected. The current problem is kept.
func (g *Generator) Configure(ops []Operation, ranges RangeConfig) error {
	if len(ops) == 0 {
		return fmt.Errorf("%w: at least one operation is required", ErrInvalidConfiguration)
	}
	seen := make(map[Operation]bool, len(ops))
	normalized := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if !op.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidConfiguration, op)
		}
		if seen[op] {
			continue
		}
		seen[op] = true
		normalized = append(normalized, op)
	}
	if ranges.MultiplicationMax < MinMultiplicationMax || ranges.MultiplicationMax > MaxMultiplicationMax {
		return fmt.Errorf("%w: multiplication max %d outside [%d, %d]",
			ErrInvalidConfiguration, ranges.MultiplicationMax, MinMultiplicationMax, MaxMultiplicationMax)
	}
	if !ranges.AdditionMagnitude.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, ranges.AdditionMagnitude)
	}
	g.ops = normalized
	g.ranges = ranges
	return nil
}

// Config returns a copy of the active configuration.
func (g *Generator) Config() ([]Operation, RangeConfig) {
	return append([]Operation(nil), g.ops...), g.ranges
}

// Generate picks an operation uniformly, builds a problem for it and makes
// it the current problem.
func (g *Generator) Generate() Problem {
	op := g.ops[rng.Intn(g.src, len(g.ops))]
	var a, b int
	switch op {
	case Multiplication:
		a, b = g.multiplicationOperands()
	case Division:
		a, b = g.divisionOperands()
	case Addition:
		a, b = g.additionOperands()
	case Subtraction:
		a, b = g.subtractionOperands()
	}
	p := Problem{
		ID:          uuid.NewString(),
		Operation:   op,
		Operands:    [2]int{a, b},
		DisplayText: fmt.Sprintf("%d %s %d = ?", a, op.Symbol(), b),
		Answer:      op.Apply(a, b),
	}
	g.current = p
	g.hasCurrent = true
	return p
}

// Current returns the active problem, if any.
func (g *Generator) Current() (Problem, bool) {
	return g.current, g.hasCurrent
}

// Validate compares candidate with the current problem's answer.
func (g *Generator) Validate(candidate int) (Result, error) {
	if !g.hasCurrent {
		return Result{}, ErrNoActiveProblem
	}
	return Result{
		IsCorrect:     candidate == g.current.Answer,
		CorrectAnswer: g.current.Answer,
		ProblemID:     g.current.ID,
	}, nil
}

// One factor is the table index in [0, 12], the other comes from the
// configured highest table; their positions are swapped at random.
func (g *Generator) multiplicationOperands() (int, int) {
	index := rng.Between(g.src, 0, TableIndexMax)
	factor := rng.Between(g.src, 1, g.ranges.MultiplicationMax)
	if rng.Intn(g.src, 2) == 1 {
		return factor, index
	}
	return index, factor
}

// Dividend is built from divisor*quotient so division never leaves a remainder.
func (g *Generator) divisionOperands() (int, int) {
	divisor := rng.Between(g.src, 1, g.ranges.MultiplicationMax)
	quotient := rng.Between(g.src, 1, g.ranges.MultiplicationMax)
	return divisor * quotient, divisor
}

func (g *Generator) additionOperands() (int, int) {
	lo, hi := g.ranges.AdditionMagnitude.Bounds()
	return rng.Between(g.src, lo, hi), rng.Between(g.src, lo, hi)
}

func (g *Generator) subtractionOperands() (int, int) {
	a, b := g.additionOperands()
	if a < b {
		a, b = b, a
	}
	return a, b
}
