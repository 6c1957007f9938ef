package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
)

const lowTimeThreshold = 5

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0")).Underline(true)
	optionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Width(12)
	problemStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	inputStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Underline(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	timerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	lowTimeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	state := m.ctrl.State()
	var content string
	switch state.GameState {
	case session.StateRunning:
		content = m.viewRunning(state)
	case session.StateFinished:
		content = m.viewFinished(state)
	default:
		content = m.viewIdle()
	}
	help := strings.Join(wrapSegments(hintSegments(m.hints(state.GameState)), m.width), "\n")
	content = lipgloss.JoinVertical(lipgloss.Center, content, "", help)

	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := footerStyle.Render(truncate(m.footerText(), m.width))
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewIdle() string {
	cfg := m.ctrl.Config()
	modes := make([]string, 0, len(model.Modes))
	for _, mode := range model.Modes {
		modes = append(modes, option(mode.Label(), mode == cfg.Mode))
	}
	diffs := make([]string, 0, len(model.Difficulties))
	for _, d := range model.Difficulties {
		diffs = append(diffs, option(string(d), d == cfg.Difficulty))
	}
	durations := make([]string, 0, len(model.Durations))
	custom := true
	for _, sec := range model.Durations {
		durations = append(durations, option(fmt.Sprintf("%ds", sec), sec == cfg.Duration))
		if sec == cfg.Duration {
			custom = false
		}
	}
	if custom {
		durations = append(durations, option(fmt.Sprintf("%ds", cfg.Duration), true))
	}
	rows := []string{
		titleStyle.Render("tuimath"),
		"",
		labelStyle.Render("mode") + strings.Join(modes, "  "),
		labelStyle.Render("difficulty") + strings.Join(diffs, "  "),
		labelStyle.Render("time") + strings.Join(durations, "  "),
		"",
		noticeStyle.Render("Press enter to start"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) viewRunning(state session.State) string {
	timer := timerStyle
	if state.TimeLeft <= lowTimeThreshold {
		timer = lowTimeStyle
	}
	header := timer.Render(fmt.Sprintf("%ds", state.TimeLeft)) + "   " +
		noticeStyle.Render(fmt.Sprintf("%d/%d correct", state.Correct, state.Total))

	input := state.Input
	if input == "" {
		input = " "
	}
	style := inputStyle
	switch state.Feedback {
	case session.FeedbackCorrect:
		style = correctStyle
	case session.FeedbackIncorrect:
		style = incorrectStyle
	}
	problem := problemStyle.Render(state.Problem.String()+" = ") + style.Render(input)
	return lipgloss.JoinVertical(lipgloss.Center, header, "", problem)
}

func (m *Model) viewFinished(state session.State) string {
	summary := m.ctrl.Summary()
	title := "Time's up!"
	if state.Skipped {
		title = "Finished early"
	}
	rows := []string{
		titleStyle.Render(title),
		"",
		fmt.Sprintf("%s · %s · %ds", summary.Mode.Label(), summary.Difficulty, summary.Duration),
		fmt.Sprintf("Correct   %d/%d", summary.Correct, summary.Total),
		fmt.Sprintf("Accuracy  %.1f%%", summary.Accuracy),
		fmt.Sprintf("PPM       %.1f", summary.PPM),
	}
	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = incorrectStyle
		}
		rows = append(rows, "", style.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) hints(state session.GameState) [][2]string {
	switch state {
	case session.StateRunning:
		return [][2]string{{"tab", "skip"}, {"F", "finish"}, {"esc", "cancel"}, {"ctrl+c", "quit"}}
	case session.StateFinished:
		return [][2]string{{"enter", "restart"}, {"ctrl+c", "quit"}}
	default:
		return [][2]string{{"m/M", "mode"}, {"1-4", "pick mode"}, {"d/D", "difficulty"}, {"t/T", "time"}, {"enter", "start"}, {"q", "quit"}}
	}
}

func (m *Model) footerText() string {
	if m.profile == "" {
		return "Guest · results are not saved"
	}
	segments := []string{m.profile}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%% · %.1f PPM", m.lastAcc, m.lastPPM))
	}
	if m.allTime.TotalSessions > 0 {
		segments = append(segments, fmt.Sprintf("All-time %d sessions · %.1f%% · %.1f PPM",
			m.allTime.TotalSessions, m.allTime.AverageAccuracy, m.allTime.AveragePPM))
	}
	return strings.Join(segments, "  ")
}

func option(label string, selected bool) string {
	if selected {
		return selectedStyle.Render(label)
	}
	return optionStyle.Render(label)
}
