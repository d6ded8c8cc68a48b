// Package settings holds the player-adjustable drill settings.
package settings

import (
	"errors"
	"fmt"
	"slices"

	"github.com/verte-zerg/mathdrill/internal/arith"
	"github.com/verte-zerg/mathdrill/internal/config"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Lives is the number of wrong answers a session tolerates when lives are enabled.
const Lives = 3

var (
	// GameLengths are the accepted target scores.
	GameLengths = []int{5, 10, 15, 20, 25, 50}
	// TimerOptions are the accepted countdowns in seconds; 0 disables the timer.
	TimerOptions = []int{0, 60, 180, 300, 600}
)

// Settings configures one drill session.
type Settings struct {
	Operations        []arith.Operation
	MultiplicationMax int
	AdditionMagnitude arith.Magnitude
	GameLength        int
	LivesEnabled      bool
	TimerSeconds      int
	CatalogPath       string
	// Mascot is the chosen companion item ID. It only shows while owned.
	Mascot            string
}

// Default returns the settings a new player starts with.
func Default() Settings {
	ranges := arith.DefaultRanges()
	return Settings{
		Operations:        []arith.Operation{arith.Multiplication},
		MultiplicationMax: ranges.MultiplicationMax,
		AdditionMagnitude: ranges.AdditionMagnitude,
		GameLength:        10,
		LivesEnabled:      true,
	}
}

// Validate rejects out-of-range values. Nothing is clamped.
func (s Settings) Validate() error {
	if len(s.Operations) == 0 {
		return fmt.Errorf("%w: select at least one operation", ErrInvalidSettings)
	}
	for _, op := range s.Operations {
		if !op.Valid() {
			return fmt.Errorf("%w: unknown operation %s", ErrInvalidSettings, op)
		}
	}
	if s.MultiplicationMax < arith.MinMultiplicationMax || s.MultiplicationMax > arith.MaxMultiplicationMax {
		return fmt.Errorf("%w: mult-max must be between %d and %d", ErrInvalidSettings,
			arith.MinMultiplicationMax, arith.MaxMultiplicationMax)
	}
	if !s.AdditionMagnitude.Valid() {
		return fmt.Errorf("%w: add-range must be ones, tens or hundreds", ErrInvalidSettings)
	}
	if !slices.Contains(GameLengths, s.GameLength) {
		return fmt.Errorf("%w: game-length must be one of %v", ErrInvalidSettings, GameLengths)
	}
	if !slices.Contains(TimerOptions, s.TimerSeconds) {
		return fmt.Errorf("%w: timer must be one of %v seconds", ErrInvalidSettings, TimerOptions)
	}
	return nil
}

// Ranges returns the generator ranges.
func (s Settings) Ranges() arith.RangeConfig {
	return arith.RangeConfig{
		MultiplicationMax: s.MultiplicationMax,
		AdditionMagnitude: s.AdditionMagnitude,
	}
}

// Apply configures gen with these settings.
func (s Settings) Apply(gen *arith.Generator) error {
	if err := gen.Configure(s.Operations, s.Ranges()); err != nil {
		return fmt.Errorf("failed to configure generator: %w", err)
	}
	return nil
}

// LivesLimit returns the starting lives, or 0 when lives are disabled.
func (s Settings) LivesLimit() int {
	if !s.LivesEnabled {
		return 0
	}
	return Lives
}

// FromFile overlays set values from the config file onto base.
func FromFile(pc config.PracticeConfig, base Settings) (Settings, error) {
	out := base
	if pc.Operations != nil {
		ops, err := arith.ParseOperations(pc.Operations)
		if err != nil {
			return base, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		out.Operations = ops
	}
	if pc.MultMax != nil {
		out.MultiplicationMax = *pc.MultMax
	}
	if pc.AddRange != nil {
		m, err := arith.ParseMagnitude(*pc.AddRange)
		if err != nil {
			return base, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		out.AdditionMagnitude = m
	}
	if pc.GameLength != nil {
		out.GameLength = *pc.GameLength
	}
	if pc.Lives != nil {
		out.LivesEnabled = *pc.Lives
	}
	if pc.Timer != nil {
		out.TimerSeconds = *pc.Timer
	}
	if pc.Catalog != nil {
		out.CatalogPath = *pc.Catalog
	}
	if pc.Mascot != nil {
		out.Mascot = *pc.Mascot
	}
	return out, nil
}

// ToFile converts s into the config file representation. Every key is set
// except an empty catalog path or mascot.
func (s Settings) ToFile() config.PracticeConfig {
	mult := s.MultiplicationMax
	addRange := s.AdditionMagnitude.String()
	length := s.GameLength
	lives := s.LivesEnabled
	timer := s.TimerSeconds
	pc := config.PracticeConfig{
		Operations: arith.OperationNames(s.Operations),
		MultMax:    &mult,
		AddRange:   &addRange,
		GameLength: &length,
		Lives:      &lives,
		Timer:      &timer,
	}
	if s.CatalogPath != "" {
		catalog := s.CatalogPath
		pc.Catalog = &catalog
	}
	if s.Mascot != "" {
		mascot := s.Mascot
		pc.Mascot = &mascot
	}
	return pc
}

// Load reads settings from the config file at path on top of the defaults.
func Load(path string) (Settings, error) {
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return Settings{}, err
	}
	return FromFile(fileCfg.Practice, Default())
}

// Save validates s and writes it to the config file at path.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return config.SaveConfig(path, config.FileConfig{Practice: s.ToFile()})
}
