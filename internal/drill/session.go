// Package drill runs one arithmetic drill session: score, lives and timer.
package drill

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/mathdrill/internal/arith"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/settings"
)

var (
	ErrFinished   = errors.New("session finished")
	ErrNotStarted = errors.New("session not started")
)

// State is the lifecycle of a session.
type State int

const (
	Idle State = iota
	Running
	Succeeded
	Failed
	Abandoned
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Finished reports whether s is a terminal state.
func (s State) Finished() bool {
	return s == Succeeded || s == Failed || s == Abandoned
}

// Options are the session rules. Lives 0 disables lives and TimerSeconds 0
// disables the countdown.
type Options struct {
	TargetScore  int
	Lives        int
	TimerSeconds int
}

// OptionsFrom derives session rules from player settings.
func OptionsFrom(s settings.Settings) Options {
	return Options{
		TargetScore:  s.GameLength,
		Lives:        s.LivesLimit(),
		TimerSeconds: s.TimerSeconds,
	}
}

// Feedback describes the outcome of one submitted answer.
type Feedback struct {
	Result    arith.Result
	Score     int
	LivesLeft int
	State     State
	// Next is the new current problem after a correct answer that did not
	// end the session. After a wrong answer it repeats the same problem.
	Next arith.Problem
}

type opTally struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Session tracks one game. It is driven from a single goroutine.
type Session struct {
	gen  *arith.Generator
	opts Options

	state     State
	score     int
	attempts  int
	livesLeft int
	shown     int

	startedAt time.Time
	endedAt   time.Time
	deadline  time.Time
	shownAt   time.Time
	current   arith.Problem

	ops map[arith.Operation]*opTally
}

// New returns an idle session over gen.
func New(gen *arith.Generator, opts Options) (*Session, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if opts.TargetScore <= 0 {
		return nil, fmt.Errorf("target score must be > 0")
	}
	if opts.Lives < 0 || opts.TimerSeconds < 0 {
		return nil, fmt.Errorf("lives and timer must be >= 0")
	}
	return &Session{gen: gen, opts: opts, ops: map[arith.Operation]*opTally{}}, nil
}

// Start begins the session and returns the first problem.
func (s *Session) Start(now time.Time) arith.Problem {
	s.state = Running
	s.score = 0
	s.attempts = 0
	s.shown = 0
	s.livesLeft = s.opts.Lives
	s.startedAt = now
	s.endedAt = time.Time{}
	s.deadline = time.Time{}
	if s.opts.TimerSeconds > 0 {
		s.deadline = now.Add(time.Duration(s.opts.TimerSeconds) * time.Second)
	}
	s.ops = map[arith.Operation]*opTally{}
	s.next(now)
	return s.current
}

func (s *Session) next(now time.Time) {
	s.current = s.gen.Generate()
	s.shown++
	s.shownAt = now
}

// Submit checks answer against the current problem.
func (s *Session) Submit(answer int, now time.Time) (Feedback, error) {
	switch {
	case s.state == Idle:
		return Feedback{}, ErrNotStarted
	case s.state.Finished():
		return Feedback{}, ErrFinished
	}
	if s.Expire(now) {
		return Feedback{}, ErrFinished
	}

	res, err := s.gen.Validate(answer)
	if err != nil {
		return Feedback{}, fmt.Errorf("failed to validate answer: %w", err)
	}
	s.attempts++
	tally := s.tally(s.current.Operation)
	if res.IsCorrect {
		tally.correct++
		tally.latencySumMs += now.Sub(s.shownAt).Milliseconds()
		tally.latencyCount++
		s.score++
		if s.score >= s.opts.TargetScore {
			s.finish(Succeeded, now)
		} else {
			s.next(now)
		}
	} else {
		tally.incorrect++
		if s.opts.Lives > 0 {
			s.livesLeft--
			if s.livesLeft <= 0 {
				s.livesLeft = 0
				s.finish(Failed, now)
			}
		}
	}
	return Feedback{
		Result:    res,
		Score:     s.score,
		LivesLeft: s.livesLeft,
		State:     s.state,
		Next:      s.current,
	}, nil
}

// Expire fails a running session whose countdown has elapsed and reports
// whether the session is over.
func (s *Session) Expire(now time.Time) bool {
	if s.state == Running && !s.deadline.IsZero() && !now.Before(s.deadline) {
		s.finish(Failed, s.deadline)
	}
	return s.state.Finished()
}

// Abandon ends a running session without a result.
func (s *Session) Abandon(now time.Time) {
	if s.state == Running {
		s.finish(Abandoned, now)
	}
}

func (s *Session) finish(state State, now time.Time) {
	s.state = state
	s.endedAt = now
}

func (s *Session) tally(op arith.Operation) *opTally {
	t, ok := s.ops[op]
	if !ok {
		t = &opTally{}
		s.ops[op] = t
	}
	return t
}

// Remaining returns the time left on the countdown. ok is false when the
// session has no timer.
func (s *Session) Remaining(now time.Time) (left time.Duration, ok bool) {
	if s.deadline.IsZero() {
		return 0, false
	}
	end := now
	if s.state.Finished() {
		end = s.endedAt
	}
	left = s.deadline.Sub(end)
	if left < 0 {
		left = 0
	}
	return left, true
}

func (s *Session) State() State { return s.state }

func (s *Session) Score() int { return s.score }

func (s *Session) Target() int { return s.opts.TargetScore }

func (s *Session) LivesLeft() int { return s.livesLeft }

func (s *Session) LivesEnabled() bool { return s.opts.Lives > 0 }

func (s *Session) Attempts() int { return s.attempts }

// ProblemsShown counts generated problems, including the current one.
func (s *Session) ProblemsShown() int { return s.shown }

// Current returns the problem awaiting an answer.
func (s *Session) Current() arith.Problem { return s.current }

// Accuracy is the rounded percentage of correct attempts, 100 before any attempt.
func (s *Session) Accuracy() int {
	if s.attempts == 0 {
		return 100
	}
	return int(math.Round(float64(s.score) / float64(s.attempts) * 100))
}

// Elapsed returns the session duration so far, or its final duration.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	if s.state.Finished() {
		return s.endedAt.Sub(s.startedAt)
	}
	return now.Sub(s.startedAt)
}

// Record builds the persisted form of a finished session.
func (s *Session) Record(cfg settings.Settings, rewardID string) (model.SessionStats, []model.OpStats) {
	stats := model.SessionStats{
		StartedAt:    s.startedAt,
		EndedAt:      s.endedAt,
		Operations:   arith.OperationNames(cfg.Operations),
		MultMax:      cfg.MultiplicationMax,
		AddRange:     cfg.AdditionMagnitude.String(),
		GameLength:   s.opts.TargetScore,
		LivesEnabled: s.opts.Lives > 0,
		TimerSeconds: s.opts.TimerSeconds,
		Correct:      s.score,
		Incorrect:    s.attempts - s.score,
		Outcome:      outcome(s.state),
		RewardID:     rewardID,
		DurationMs:   s.endedAt.Sub(s.startedAt).Milliseconds(),
	}
	ops := make([]model.OpStats, 0, len(s.ops))
	for _, op := range arith.AllOperations() {
		t, ok := s.ops[op]
		if !ok {
			continue
		}
		ops = append(ops, model.OpStats{
			Operation:    op.String(),
			Correct:      t.correct,
			Incorrect:    t.incorrect,
			LatencySumMs: t.latencySumMs,
			LatencyCount: t.latencyCount,
		})
	}
	return stats, ops
}

func outcome(s State) model.Outcome {
	switch s {
	case Succeeded:
		return model.OutcomeSucceeded
	case Failed:
		return model.OutcomeFailed
	default:
		return model.OutcomeAbandoned
	}
}
