// Package model defines shared data structures.
package model

import "time"

// Outcome is how a drill session ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeAbandoned Outcome = "abandoned"
)

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Operation   string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a completed drill session.
type SessionStats struct {
	StartedAt    time.Time
	EndedAt      time.Time
	Operations   []string
	MultMax      int
	AddRange     string
	GameLength   int
	LivesEnabled bool
	TimerSeconds int
	Correct      int
	Incorrect    int
	Outcome      Outcome
	RewardID     string
	DurationMs   int64
}

// OpStats stores per-operation answers for one session.
type OpStats struct {
	Operation    string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// OpAggregate aggregates operation stats across sessions.
type OpAggregate struct {
	Operation    string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	DurationMs int64
	Outcome    Outcome
	RewardID   string
}
