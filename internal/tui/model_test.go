package tui

import (
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mathdrill/internal/arith"
	"github.com/verte-zerg/mathdrill/internal/drill"
	"github.com/verte-zerg/mathdrill/internal/reward"
	"github.com/verte-zerg/mathdrill/internal/rng"
	"github.com/verte-zerg/mathdrill/internal/settings"
)

func newTestModel(t *testing.T, length, timer int) *Model {
	t.Helper()
	cfg := settings.Default()
	cfg.GameLength = length
	cfg.TimerSeconds = timer
	gen := arith.New(rng.NewSeeded(11))
	if err := cfg.Apply(gen); err != nil {
		t.Fatalf("apply: %v", err)
	}
	engine, err := reward.New([]reward.Item{
		{ID: "aurora_unicorn", Name: "Aurora", Species: "Unicorn", Squad: "Magical Squad", Rarity: reward.RarityCommon,
			Description: "Aurora loves to practice math problems under the rainbow!"},
	}, nil, rng.NewSeeded(1))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	m, err := NewModel(cfg, nil, engine, gen)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func answer(m *Model, value int) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(strconv.Itoa(value))})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestCorrectAnswersAwardReward(t *testing.T) {
	m := newTestModel(t, 5, 0)
	for i := 0; i < 5; i++ {
		if m.phase != phasePlaying {
			t.Fatalf("session ended early after %d answers", i)
		}
		answer(m, m.session.Current().Answer)
	}
	if m.phase != phaseResult || m.session.State() != drill.Succeeded {
		t.Fatalf("expected success, got phase %d state %s", m.phase, m.session.State())
	}
	if m.reward == nil || m.reward.ID != "aurora_unicorn" {
		t.Fatalf("expected the only catalog item as reward, got %+v", m.reward)
	}
	view := m.View()
	if !containsAll(view, []string{"Aurora the Unicorn", "Magical Squad", "Collection 1/1 (100%)"}) {
		t.Fatalf("result view missing reward details:\n%s", view)
	}

	// Second win with nothing left to award.
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phasePlaying {
		t.Fatalf("enter should start a new session")
	}
	for m.phase == phasePlaying {
		answer(m, m.session.Current().Answer)
	}
	if m.reward != nil || !m.complete {
		t.Fatalf("expected collection complete, got reward %+v", m.reward)
	}
	if !strings.Contains(m.View(), "collected every friend") {
		t.Fatalf("expected collection complete message")
	}
}

func TestWrongAnswersEndInFailure(t *testing.T) {
	m := newTestModel(t, 10, 0)
	p := m.session.Current()
	for i := 0; i < settings.Lives; i++ {
		answer(m, p.Answer+1)
		if i < settings.Lives-1 && m.session.Current().ID != p.ID {
			t.Fatalf("wrong answer must keep the problem")
		}
	}
	if m.phase != phaseResult || m.session.State() != drill.Failed {
		t.Fatalf("expected failure after %d wrong answers", settings.Lives)
	}
	if m.reward != nil || m.engine.Stats().Owned != 0 {
		t.Fatalf("failure must not award anything")
	}
	if !strings.Contains(m.View(), "Out of lives") {
		t.Fatalf("expected out of lives message")
	}
}

func TestResultShowsOwnedMascot(t *testing.T) {
	m := newTestModel(t, 5, 0)
	m.settings.Mascot = "aurora_unicorn"
	p := m.session.Current()
	for i := 0; i < settings.Lives; i++ {
		answer(m, p.Answer+1)
	}
	if m.phase != phaseResult {
		t.Fatalf("expected the session to end")
	}
	if strings.Contains(m.View(), "Companion:") {
		t.Fatalf("an unowned mascot must not be shown:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for m.phase == phasePlaying {
		answer(m, m.session.Current().Answer)
	}
	if !strings.Contains(m.View(), "Companion: Aurora the Unicorn") {
		t.Fatalf("expected the collected mascot on the result card:\n%s", m.View())
	}
}

func TestNonDigitInputIgnored(t *testing.T) {
	m := newTestModel(t, 5, 0)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if m.input.Value() != "" {
		t.Fatalf("expected empty input, got %q", m.input.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Attempts() != 0 {
		t.Fatalf("empty submit must not count as an attempt")
	}
}

func TestTimerExpiresSession(t *testing.T) {
	m := newTestModel(t, 5, 60)
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	m.startSession()

	clock = clock.Add(30 * time.Second)
	if _, cmd := m.Update(tickMsg{round: m.round}); cmd == nil {
		t.Fatalf("expected another tick while time remains")
	}
	if !strings.Contains(m.renderStatus(), "Time 0:30") {
		t.Fatalf("unexpected status %q", m.renderStatus())
	}

	clock = clock.Add(31 * time.Second)
	m.Update(tickMsg{round: m.round - 1})
	if m.phase != phasePlaying {
		t.Fatalf("stale tick must be ignored")
	}
	m.Update(tickMsg{round: m.round})
	if m.phase != phaseResult || m.session.State() != drill.Failed {
		t.Fatalf("expected timeout failure")
	}
	if !strings.Contains(m.View(), "Time's up") {
		t.Fatalf("expected time's up message")
	}
}
