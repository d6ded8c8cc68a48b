// Package collectionui provides the Bubble Tea collection browser.
package collectionui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/reward"
	"github.com/verte-zerg/mathdrill/internal/stats"
	"github.com/verte-zerg/mathdrill/internal/store"
)

const (
	tabCollection = iota
	tabProgress
)

const (
	detailHeight = 5
	lockedName   = "???"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea collection UI.
type Model struct {
	engine *reward.Engine
	store  *store.Store
	cfg    model.StatsConfig

	tabs      []string
	activeTab int
	items     table.Model
	progress  viewport.Model

	width  int
	height int

	mascot     string
	saveMascot func(string) error

	confirmReset bool
	errMsg       string
	notice       string
}

// NewModel constructs a collection UI. st may be nil, in which case resets
// are not persisted and the progress tab stays empty. saveMascot persists a
// new mascot choice; an empty ID clears it. It may be nil.
func NewModel(engine *reward.Engine, st *store.Store, cfg model.StatsConfig, mascot string, saveMascot func(string) error) *Model {
	m := &Model{
		engine:     engine,
		store:      st,
		cfg:        cfg,
		mascot:     mascot,
		saveMascot: saveMascot,
		tabs:       []string{"Collection", "Progress"},
		progress:   viewport.New(0, 0),
	}
	m.items = table.New(
		table.WithColumns(itemColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(itemTableStyles()),
	)
	m.refreshItems()
	m.refreshProgress()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.refreshProgress()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.confirmReset {
			return m.updateConfirm(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.confirmReset = true
			m.notice = ""
			return m, nil
		case "m":
			if m.activeTab == tabCollection {
				m.chooseMascot()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabCollection {
				m.items.GotoTop()
			} else {
				m.progress.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabCollection {
				m.items.GotoBottom()
			} else {
				m.progress.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabCollection {
			m.items, cmd = m.items.Update(msg)
		} else {
			m.progress, cmd = m.progress.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmReset = false
	if msg.String() != "y" && msg.String() != "Y" {
		m.notice = "Reset cancelled."
		return m, nil
	}
	m.engine.Reset()
	if m.store != nil {
		if err := m.store.SaveOwnership(context.Background(), nil); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
	}
	m.errMsg = ""
	m.notice = "Collection reset."
	m.refreshItems()
	if m.mascot != "" {
		m.mascot = ""
		if m.saveMascot != nil {
			if err := m.saveMascot(""); err != nil {
				m.errMsg = err.Error()
			}
		}
	}
	return m, nil
}

// chooseMascot makes the selected item the companion. Locked items are refused.
func (m *Model) chooseMascot() {
	it, ok := m.selected()
	if !ok {
		return
	}
	if _, err := m.engine.ChooseMascot(it.ID); err != nil {
		m.errMsg = ""
		m.notice = "Find this friend before choosing it as your companion."
		return
	}
	if m.saveMascot != nil {
		if err := m.saveMascot(it.ID); err != nil {
			m.errMsg = err.Error()
			return
		}
	}
	m.mascot = it.ID
	m.errMsg = ""
	m.notice = it.Title() + " is now your companion."
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.confirmReset {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderConfirm())
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1
	footerHeight = 1
	if m.errMsg != "" || m.notice != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.progress.Width = m.width
	m.progress.Height = bodyHeight
	m.items.SetWidth(m.width)
	m.items.SetHeight(max(1, bodyHeight-detailHeight))
}

func (m *Model) moveTab(delta int) {
	next := m.activeTab + delta
	if next < 0 {
		next = len(m.tabs) - 1
	}
	if next >= len(m.tabs) {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabCollection {
		m.items.Focus()
	} else {
		m.items.Blur()
	}
}

func (m *Model) refreshItems() {
	items := m.engine.Items()
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow(it, m.engine.IsOwned(it.ID)))
	}
	m.items.SetRows(rows)
	if m.items.Cursor() >= len(rows) {
		m.items.SetCursor(max(0, len(rows)-1))
	}
}

func (m *Model) refreshProgress() {
	if m.store == nil {
		m.progress.SetContent("No sessions found.")
		return
	}
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.progress.SetContent("Failed to load stats.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if err := stats.Render(&buf, report, m.cfg.CurveWindow, width); err != nil {
		m.progress.SetContent(fmt.Sprintf("Failed to render stats: %v", err))
		return
	}
	m.progress.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func itemColumns() []table.Column {
	return []table.Column{
		{Title: "", Width: 2},
		{Title: "Name", Width: 12},
		{Title: "Species", Width: 12},
		{Title: "Squad", Width: 16},
		{Title: "Rarity", Width: 9},
		{Title: "Weight", Width: 6},
	}
}

func itemRow(it reward.Item, owned bool) table.Row {
	mark, name, species, squad := "·", lockedName, lockedName, it.Squad
	if owned {
		mark, name, species = "★", it.Name, it.Species
	}
	return table.Row{mark, name, species, squad, it.Rarity.DisplayName(), strconv.Itoa(it.Rarity.Weight())}
}

func itemTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// selected returns the catalog item under the table cursor.
func (m *Model) selected() (reward.Item, bool) {
	items := m.engine.Items()
	idx := m.items.Cursor()
	if idx < 0 || idx >= len(items) {
		return reward.Item{}, false
	}
	return items[idx], true
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := truncateLine(m.renderSummary(), m.width)
	return tabs + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderSummary() string {
	st := m.engine.Stats()
	owned := map[reward.Rarity]int{}
	total := map[reward.Rarity]int{}
	for _, it := range m.engine.Items() {
		total[it.Rarity]++
		if m.engine.IsOwned(it.ID) {
			owned[it.Rarity]++
		}
	}
	parts := []string{fmt.Sprintf("Collection %d/%d (%d%%)", st.Owned, st.Total, st.Percentage)}
	for _, r := range reward.AllRarities() {
		if total[r] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", r.DisplayName(), owned[r], total[r]))
	}
	if it, ok := m.engine.Mascot(m.mascot); ok {
		parts = append(parts, "Companion: "+it.Name)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabProgress {
		return fitLines(m.progress.View(), m.width, height)
	}
	if len(m.engine.Items()) == 0 {
		return fitLines("Catalog is empty.", m.width, height)
	}
	view := tableMutedStyle.Render(m.items.View())
	return view + "\n" + fitLines(m.renderDetail(), m.width, detailHeight)
}

func (m *Model) renderDetail() string {
	it, ok := m.selected()
	if !ok {
		return ""
	}
	if !m.engine.IsOwned(it.ID) {
		return headerStyle.Render(fmt.Sprintf("Not found yet. A %s friend from the %s.", strings.ToLower(it.Rarity.DisplayName()), squadName(it)))
	}
	lines := []string{titleStyle.Render(it.Title())}
	if it.ID == m.mascot {
		lines[0] += headerStyle.Render("  (your companion)")
	}
	if it.Description != "" {
		width := max(20, m.width-2)
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(it.Description))
	}
	return strings.Join(lines, "\n")
}

func squadName(it reward.Item) string {
	if it.Squad == "" {
		return "catalog"
	}
	return it.Squad
}

func (m *Model) renderConfirm() string {
	st := m.engine.Stats()
	body := fmt.Sprintf("Reset collection?\n\nThis forgets all %d friends you have found.\n\ny: reset  any other key: cancel", st.Owned)
	return modalStyle.Render(body)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Move: up/down  Companion: m  Reset: r  Quit: q"
	if m.activeTab == tabProgress {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	}
	lines := []string{headerStyle.Render(truncateLine(help, m.width))}
	switch {
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(truncateLine(m.errMsg, m.width)))
	case m.notice != "":
		lines = append(lines, headerStyle.Render(truncateLine(m.notice, m.width)))
	}
	return strings.Join(lines, "\n")
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
