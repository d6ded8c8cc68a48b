// Package rng provides swappable uniform random sources.
package rng

import (
	"math/rand/v2"
	"time"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

type pcgSource struct {
	r *rand.Rand
}

func (s *pcgSource) Float64() float64 { return s.r.Float64() }

// New returns a Source seeded with the current time.
func New() Source {
	seed := uint64(time.Now().UnixNano())
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// NewSeeded returns a reproducible Source.
func NewSeeded(seed uint64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, 0))}
}

// Sequence replays fixed values in order and wraps around at the end.
// Values outside [0, 1) are clamped into range.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence returns a Sequence over values. An empty sequence always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Float64 implements Source.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return 1 - 1e-12
	}
	return v
}

// Intn returns a uniform int in [0, n). n <= 0 yields 0.
func Intn(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Between returns a uniform int in [lo, hi], inclusive on both ends.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + Intn(src, hi-lo+1)
}
