// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mathdrill/internal/arith"
	"github.com/verte-zerg/mathdrill/internal/drill"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/reward"
	"github.com/verte-zerg/mathdrill/internal/settings"
	statsPkg "github.com/verte-zerg/mathdrill/internal/stats"
	"github.com/verte-zerg/mathdrill/internal/store"
)

type phase int

const (
	phasePlaying phase = iota
	phaseResult
)

type tickMsg struct {
	round int
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	settings settings.Settings
	store    *store.Store
	engine   *reward.Engine
	session  *drill.Session
	round    int
	now      func() time.Time

	input    textinput.Model
	progress progress.Model

	width  int
	height int

	phase      phase
	feedback   string
	feedbackOK bool

	reward   *reward.Item
	complete bool

	lastAcc float64
	hasLast bool

	allCorrect   int
	allIncorrect int
	allAcc       float64
}

var (
	problemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle      = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs a drill TUI model. gen must already be configured
// from cfg.
func NewModel(cfg settings.Settings, st *store.Store, engine *reward.Engine, gen *arith.Generator) (*Model, error) {
	session, err := drill.New(gen, drill.OptionsFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "answer"
	input.CharLimit = 6
	input.Width = 8
	input.Focus()

	m := &Model{
		settings: cfg,
		store:    st,
		engine:   engine,
		session:  session,
		now:      time.Now,
		input:    input,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.startSession()
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m *Model) tick() tea.Cmd {
	if m.settings.TimerSeconds <= 0 {
		return nil
	}
	round := m.round
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{round: round} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(40, max(10, msg.Width/2))
		return m, nil
	case tickMsg:
		if m.phase != phasePlaying || msg.round != m.round {
			return m, nil
		}
		if m.session.Expire(m.now()) {
			m.finishSession()
			return m, nil
		}
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.abandon()
			return m, tea.Quit
		}
		if m.phase == phaseResult {
			return m.updateResult(msg)
		}
		return m.updatePlaying(msg)
	}
	return m, nil
}

func (m *Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.abandon()
		return m, tea.Quit
	case tea.KeyEnter:
		m.submit()
		return m, nil
	case tea.KeySpace:
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "n":
		m.startSession()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) startSession() {
	m.round++
	m.session.Start(m.now())
	m.phase = phasePlaying
	m.feedback = ""
	m.reward = nil
	m.complete = false
	m.input.Reset()
}

func (m *Model) submit() {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return
	}
	answer, err := strconv.Atoi(raw)
	if err != nil {
		m.feedback = "Numbers only, please."
		m.feedbackOK = false
		m.input.Reset()
		return
	}
	m.input.Reset()
	fb, err := m.session.Submit(answer, m.now())
	if err != nil {
		if m.session.State().Finished() {
			m.finishSession()
			return
		}
		logErrf("failed to submit answer: %v\n", err)
		return
	}
	if fb.Result.IsCorrect {
		m.feedback = "Correct!"
		m.feedbackOK = true
	} else {
		m.feedback = "Not quite, try again."
		m.feedbackOK = false
	}
	if fb.State.Finished() {
		m.finishSession()
	}
}

func (m *Model) finishSession() {
	m.phase = phaseResult
	rewardID := ""
	if m.session.State() == drill.Succeeded && m.engine != nil {
		item, ok := m.engine.Draw()
		if ok {
			m.reward = &item
			rewardID = item.ID
			m.saveOwnership()
		} else {
			m.complete = true
		}
	}

	stats, ops := m.session.Record(m.settings, rewardID)
	if m.store != nil {
		if _, err := m.store.InsertSession(context.Background(), stats, ops); err != nil {
			logErrf("failed to save session: %v\n", err)
		}
	}
	_, acc := statsPkg.SessionMetrics(stats.Correct, stats.Incorrect, stats.DurationMs)
	m.lastAcc = acc
	m.hasLast = true
	m.allCorrect += stats.Correct
	m.allIncorrect += stats.Incorrect
	m.recomputeAllTime()
}

func (m *Model) saveOwnership() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveOwnership(context.Background(), m.engine.Owned()); err != nil {
		logErrf("failed to save collection: %v\n", err)
	}
}

// abandon records a started session that the player quit.
func (m *Model) abandon() {
	if m.phase != phasePlaying || m.session.Attempts() == 0 {
		return
	}
	m.session.Abandon(m.now())
	if m.store == nil {
		return
	}
	stats, ops := m.session.Record(m.settings, "")
	if _, err := m.store.InsertSession(context.Background(), stats, ops); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	_, m.lastAcc = statsPkg.SessionMetrics(last.Correct, last.Incorrect, last.DurationMs)
	m.hasLast = true
	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allIncorrect += s.Incorrect
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	_, m.allAcc = statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, 0)
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.phase == phaseResult {
		content = m.renderResult()
	} else {
		content = m.renderPlaying()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderPlaying() string {
	lines := []string{
		m.renderStatus(),
		m.progress.ViewAs(float64(m.session.Score()) / float64(m.session.Target())),
		"",
		problemStyle.Render(m.session.Current().DisplayText),
		"",
		m.input.View(),
	}
	switch {
	case m.feedback == "":
		lines = append(lines, "")
	case m.feedbackOK:
		lines = append(lines, correctStyle.Render(m.feedback))
	default:
		lines = append(lines, incorrectStyle.Render(m.feedback))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderStatus() string {
	segments := []string{fmt.Sprintf("Score %d/%d", m.session.Score(), m.session.Target())}
	if m.session.LivesEnabled() {
		left := m.session.LivesLeft()
		hearts := strings.Repeat("♥", left) + strings.Repeat("♡", settings.Lives-left)
		segments = append(segments, incorrectStyle.Render(hearts))
	}
	if left, ok := m.session.Remaining(m.now()); ok {
		secs := int(left.Round(time.Second) / time.Second)
		segments = append(segments, fmt.Sprintf("Time %d:%02d", secs/60, secs%60))
	}
	return strings.Join(segments, "   ")
}

func (m *Model) renderResult() string {
	var lines []string
	switch {
	case m.reward != nil:
		it := m.reward
		lines = append(lines,
			correctStyle.Render("Great job! You earned a new friend:"),
			"",
			accentStyle.Render(it.Title()),
			pendingStyle.Render(strings.TrimPrefix(it.Squad+" · "+it.Rarity.DisplayName(), " · ")),
		)
		if it.Description != "" {
			lines = append(lines, "", wrapWords(it.Description, m.cardWidth(), plainStyle))
		}
	case m.complete:
		lines = append(lines, correctStyle.Render("Great job! You have collected every friend!"))
	case m.session.State() == drill.Succeeded:
		lines = append(lines, correctStyle.Render("Great job!"))
	case m.session.LivesEnabled() && m.session.LivesLeft() == 0:
		lines = append(lines, incorrectStyle.Render("Out of lives! Keep practicing."))
	default:
		lines = append(lines, incorrectStyle.Render("Time's up! Keep practicing."))
	}
	lines = append(lines, "",
		fmt.Sprintf("Score %d/%d · Accuracy %d%%", m.session.Score(), m.session.Target(), m.session.Accuracy()))
	if m.engine != nil {
		st := m.engine.Stats()
		lines = append(lines, fmt.Sprintf("Collection %d/%d (%d%%)", st.Owned, st.Total, st.Percentage))
		if it, ok := m.engine.Mascot(m.settings.Mascot); ok {
			lines = append(lines, pendingStyle.Render("Companion: "+it.Title()))
		}
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) cardWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(20, min(60, m.width-10))
}

func plainStyle(s string) string { return s }

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Accuracy %d%%", m.session.Accuracy())}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%%", m.lastAcc*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f%%", m.allAcc*100))
	if m.phase == phaseResult {
		segments = append(segments, "enter: play again  q: quit")
	} else {
		segments = append(segments, "enter: submit  esc: quit")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
