// Package arith generates arithmetic drill problems and checks answers.
package arith

import (
	"fmt"
	"strings"
)

// Operation is one of the four drilled arithmetic operations.
type Operation int

const (
	Addition Operation = iota + 1
	Subtraction
	Multiplication
	Division
)

// AllOperations lists every operation in canonical order.
func AllOperations() []Operation {
	return []Operation{Addition, Subtraction, Multiplication, Division}
}

func (o Operation) String() string {
	switch o {
	case Addition:
		return "addition"
	case Subtraction:
		return "subtraction"
	case Multiplication:
		return "multiplication"
	case Division:
		return "division"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Symbol returns the operator shown to the learner.
func (o Operation) Symbol() string {
	switch o {
	case Addition:
		return "+"
	case Subtraction:
		return "−"
	case Multiplication:
		return "×"
	case Division:
		return "÷"
	default:
		return "?"
	}
}

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	return o >= Addition && o <= Division
}

// Apply evaluates a op b. Division is integer division; callers only
// produce remainder-free operands.
func (o Operation) Apply(a, b int) int {
	switch o {
	case Addition:
		return a + b
	case Subtraction:
		return a - b
	case Multiplication:
		return a * b
	case Division:
		if b == 0 {
			return 0
		}
		return a / b
	default:
		return 0
	}
}

// ParseOperation accepts a long name, a short alias or the operator symbol.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "addition", "add", "+":
		return Addition, nil
	case "subtraction", "sub", "-", "−":
		return Subtraction, nil
	case "multiplication", "mul", "x", "*", "×":
		return Multiplication, nil
	case "division", "div", "/", "÷":
		return Division, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

// ParseOperations parses a list of operation names.
func ParseOperations(names []string) ([]Operation, error) {
	ops := make([]Operation, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		op, err := ParseOperation(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// OperationNames renders ops by their long names.
func OperationNames(ops []Operation) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}

// Magnitude selects the operand interval for addition and subtraction.
type Magnitude int

const (
	Ones Magnitude = iota + 1
	Tens
	Hundreds
)

func (m Magnitude) String() string {
	switch m {
	case Ones:
		return "ones"
	case Tens:
		return "tens"
	case Hundreds:
		return "hundreds"
	default:
		return fmt.Sprintf("magnitude(%d)", int(m))
	}
}

// Bounds returns the inclusive operand interval.
func (m Magnitude) Bounds() (lo, hi int) {
	switch m {
	case Ones:
		return 1, 9
	case Tens:
		return 1, 99
	case Hundreds:
		return 1, 999
	default:
		return 0, 0
	}
}

// Valid reports whether m is a known magnitude.
func (m Magnitude) Valid() bool {
	return m >= Ones && m <= Hundreds
}

// ParseMagnitude parses "ones", "tens" or "hundreds".
func ParseMagnitude(s string) (Magnitude, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ones":
		return Ones, nil
	case "tens":
		return Tens, nil
	case "hundreds":
		return Hundreds, nil
	default:
		return 0, fmt.Errorf("unknown magnitude %q", s)
	}
}

const (
	MinMultiplicationMax = 5
	MaxMultiplicationMax = 20

	// TableIndexMax is the highest times-table fact always drilled.
	TableIndexMax = 12
)

// RangeConfig controls operand magnitude per operation family.
type RangeConfig struct {
	MultiplicationMax int
	AdditionMagnitude Magnitude
}

// Problem is a generated arithmetic problem. Division operands are
// [dividend, divisor].
type Problem struct {
	ID          string
	Operation   Operation
	Operands    [2]int
	DisplayText string
	Answer      int
}

// Result reports the outcome of checking a candidate answer.
type Result struct {
	IsCorrect     bool
	CorrectAnswer int
	ProblemID     string
}
