// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"
)

const (
	tabOverview = iota
	tabHistory
	tabBreakdown
)

const (
	plotHeight  = 10
	loadTimeout = 5 * time.Second
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
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store stats.HistoryLoader
	cfg   model.StatsConfig
	now   func() time.Time

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	history   sizedTable
	breakdown sizedTable

	width  int
	height int

	form settingsForm
}

// NewModel constructs a stats UI model.
func NewModel(st stats.HistoryLoader, cfg model.StatsConfig) *Model {
	if cfg.CurveWindow < 1 {
		cfg.CurveWindow = 1
	}
	m := &Model{
		store:     st,
		cfg:       cfg,
		now:       time.Now,
		tabs:      []string{"Overview", "History", "Breakdown"},
		overview:  viewport.New(0, 0),
		history:   newSizedTable(),
		breakdown: newSizedTable(),
		form:      newSettingsForm(),
	}
	m.refreshReport()
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
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.form.open {
			return m, m.updateForm(msg)
		}
		return m, m.updateBrowse(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	m.focusActiveTable()
	t := m.activeTable()
	switch msg.String() {
	case "q":
		return tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return tea.ClearScreen
	case "=", "+":
		m.setCurveWindow(nextCurveWindow(m.cfg.CurveWindow))
		return nil
	case "-", "_":
		m.setCurveWindow(prevCurveWindow(m.cfg.CurveWindow))
		return nil
	case "/":
		return m.form.show(m.cfg)
	case "g", "home":
		if t != nil {
			t.GotoTop()
		} else {
			m.overview.GotoTop()
		}
		return nil
	case "G", "end":
		if t != nil {
			t.GotoBottom()
		} else {
			m.overview.GotoBottom()
		}
		return nil
	}
	var cmd tea.Cmd
	if t != nil {
		t.Model, cmd = t.Model.Update(msg)
		return cmd
	}
	m.overview, cmd = m.overview.Update(msg)
	return cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.form.hide()
		return nil
	case tea.KeyEnter:
		cfg, err := m.form.config(m.now())
		if err != nil {
			m.form.err = err.Error()
			return nil
		}
		m.form.hide()
		m.cfg = cfg
		m.refreshReport()
		m.updateLayout()
		return nil
	}
	return m.form.update(msg)
}

func (m *Model) setCurveWindow(n int) {
	m.cfg.CurveWindow = n
	m.renderOverview()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.form.open && m.errMsg != "" {
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
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.history.setSize(m.width, bodyHeight)
	m.breakdown.setSize(m.width, bodyHeight)
	m.form.setWidth(m.width)
}

func (m *Model) activeTable() *sizedTable {
	switch m.activeTab {
	case tabHistory:
		return &m.history
	case tabBreakdown:
		return &m.breakdown
	default:
		return nil
	}
}

func (m *Model) focusActiveTable() {
	m.history.Blur()
	m.breakdown.Blur()
	if t := m.activeTable(); t != nil {
		t.Focus()
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	m.focusActiveTable()
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
	summary := headerStyle.Render(truncateLine("Settings: "+stats.DescribeFilter(m.cfg), m.width))
	return tabs + "\n" + padLines(summary, m.width)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
}

func (m *Model) renderFooter() string {
	if m.form.open {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.form.open {
		return fitLines(m.form.view(), m.width, height)
	}
	if m.errMsg != "" {
		return fitLines("Failed to load stats.", m.width, height)
	}
	t := m.activeTable()
	if t == nil {
		return fitLines(m.overview.View(), m.width, height)
	}
	if len(m.report.Sessions) == 0 {
		return fitLines("No sessions found.", m.width, height)
	}
	return fitLines(tableMutedStyle.Render(t.View()), m.width, height)
}

func (m *Model) refreshReport() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	report, err := stats.BuildReport(ctx, m.store, m.cfg.Filter)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	cols, rows := historyTableData(report.Sessions)
	m.history.setData(cols, rows, width, bodyHeight)
	cols, rows = breakdownTableData(report.Breakdown)
	m.breakdown.setData(cols, rows, width, bodyHeight)
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load stats.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(report, width)
	trend := renderTrend(report.Sessions, width)
	curves := renderCurves(report.Sessions, window, width)
	return strings.TrimRight(summary+"\n"+trend+"\n\n"+curves, "\n")
}

func renderSummaryCards(report stats.Report, width int) string {
	bestPPM := 0.0
	problems := 0
	for _, s := range report.Sessions {
		if s.PPM > bestPPM {
			bestPPM = s.PPM
		}
		problems += s.Total
	}
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", report.Stats.TotalSessions)),
		metricCard("Avg Accuracy", fmt.Sprintf("%.1f%%", report.Stats.AverageAccuracy)),
		metricCard("Avg PPM", fmt.Sprintf("%.1f", report.Stats.AveragePPM)),
		metricCard("Best PPM", fmt.Sprintf("%.1f", bestPPM)),
		metricCard("Problems", fmt.Sprintf("%d", problems)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

// renderTrend shows the most recent accuracies as a sparkline, oldest first.
func renderTrend(sessions []model.SessionRecord, width int) string {
	const label = "Accuracy trend "
	n := min(len(sessions), max(1, width-len(label)))
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[n-1-i] = sessions[i].Accuracy
	}
	return headerStyle.Render(label) + stats.Sparkline(values)
}

func renderCurves(sessions []model.SessionRecord, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}
