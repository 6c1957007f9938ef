// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
	"github.com/verte-zerg/tuimath/internal/stats"
)

const footerLoadTimeout = 2 * time.Second

type tickMsg struct {
	id uint64
}

type advanceMsg struct {
	seq uint64
}

type persistedMsg session.PersistResult

// Model implements the Bubble Tea practice UI around a session controller.
type Model struct {
	ctrl          *session.Controller
	history       stats.HistoryLoader
	profile       string
	feedbackDelay time.Duration

	width  int
	height int

	saving    bool
	notice    string
	noticeErr bool

	hasLast bool
	lastAcc float64
	lastPPM float64
	allTime model.UserStats
}

// NewModel constructs a practice model. history may be nil; an empty
// profile runs in guest mode.
func NewModel(ctrl *session.Controller, history stats.HistoryLoader, profile string, feedbackDelay time.Duration) *Model {
	if feedbackDelay <= 0 {
		feedbackDelay = session.DefaultFeedbackDelay
	}
	m := &Model{
		ctrl:          ctrl,
		history:       history,
		profile:       profile,
		feedbackDelay: feedbackDelay,
	}
	m.loadFooterStats()
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
		return m, nil
	case tickMsg:
		if m.ctrl.Tick(msg.id) {
			return m, tickCmd(msg.id)
		}
		if m.ctrl.State().GameState == session.StateFinished {
			return m, m.onFinish()
		}
		return m, nil
	case advanceMsg:
		m.ctrl.Advance(msg.seq)
		return m, nil
	case persistedMsg:
		m.onPersisted(session.PersistResult(msg))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.ctrl.State().GameState {
		case session.StateIdle:
			return m.updateIdle(msg)
		case session.StateRunning:
			return m, m.updateRunning(msg)
		case session.StateFinished:
			return m, m.updateFinished(msg)
		}
	}
	return m, nil
}

func (m *Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeySpace:
		if m.ctrl.StartTest() {
			m.clearNotice()
			return m, tickCmd(m.ctrl.TimerID())
		}
		return m, nil
	case tea.KeyRunes:
	default:
		return m, nil
	}
	cfg := m.ctrl.Config()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "m":
		m.ctrl.SetMode(cycle(model.Modes, cfg.Mode, 1))
	case "M":
		m.ctrl.SetMode(cycle(model.Modes, cfg.Mode, -1))
	case "d":
		m.ctrl.SetDifficulty(cycle(model.Difficulties, cfg.Difficulty, 1))
	case "D":
		m.ctrl.SetDifficulty(cycle(model.Difficulties, cfg.Difficulty, -1))
	case "t":
		m.ctrl.SetDuration(cycle(model.Durations, cfg.Duration, 1))
	case "T":
		m.ctrl.SetDuration(cycle(model.Durations, cfg.Duration, -1))
	case "1", "2", "3", "4":
		idx := int(msg.Runes[0] - '1')
		m.ctrl.SetMode(model.Modes[idx])
	}
	return m, nil
}

func (m *Model) updateRunning(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.ctrl.Cancel()
		return nil
	case tea.KeyTab:
		m.ctrl.Skip()
		return nil
	case tea.KeyBackspace, tea.KeyDelete:
		input := []rune(m.ctrl.State().Input)
		if len(input) == 0 {
			return nil
		}
		return m.submit(string(input[:len(input)-1]))
	case tea.KeyRunes:
	default:
		return nil
	}
	if msg.String() == "F" {
		if m.ctrl.ForceFinish() {
			return m.onFinish()
		}
		return nil
	}
	input := m.ctrl.State().Input
	for _, r := range msg.Runes {
		if (r < '0' || r > '9') && r != '-' {
			return nil
		}
		input += string(r)
	}
	return m.submit(input)
}

func (m *Model) updateFinished(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeySpace:
		m.ctrl.Restart()
	}
	return nil
}

func (m *Model) submit(input string) tea.Cmd {
	if !m.ctrl.SubmitAnswer(input) {
		return nil
	}
	seq, _ := m.ctrl.FeedbackSeq()
	return advanceCmd(seq, m.feedbackDelay)
}

func (m *Model) onFinish() tea.Cmd {
	ch := m.ctrl.TakePersistResult()
	if ch == nil {
		m.saving = false
		if m.ctrl.State().Total == 0 {
			m.setNotice("No answers, nothing to save.", false)
		}
		return nil
	}
	m.saving = true
	m.setNotice("Saving...", false)
	return waitPersist(ch)
}

func (m *Model) onPersisted(res session.PersistResult) {
	m.saving = false
	switch {
	case res.Guest():
		m.setNotice("Guest session, not saved. Run with --profile to keep history.", false)
	case res.Err != nil:
		logErrf("failed to save session: %v\n", res.Err)
		m.setNotice(fmt.Sprintf("Failed to save session: %v", res.Err), true)
	default:
		m.setNotice("Session saved.", false)
		m.loadFooterStats()
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) clearNotice() {
	m.setNotice("", false)
}

func (m *Model) loadFooterStats() {
	if m.history == nil || m.profile == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), footerLoadTimeout)
	defer cancel()
	filter := model.HistoryFilter{Profile: m.profile}
	allTime, err := m.history.LoadStats(ctx, filter)
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	m.allTime = allTime
	filter.Last = 1
	last, err := m.history.ListSessions(ctx, filter)
	if err != nil {
		logErrf("failed to load last session: %v\n", err)
		return
	}
	if len(last) == 0 {
		return
	}
	m.hasLast = true
	m.lastAcc = last[0].Accuracy
	m.lastPPM = last[0].PPM
}

func tickCmd(id uint64) tea.Cmd {
	return tea.Tick(session.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

func advanceCmd(seq uint64, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return advanceMsg{seq: seq}
	})
}

func waitPersist(ch <-chan session.PersistResult) tea.Cmd {
	return func() tea.Msg {
		return persistedMsg(<-ch)
	}
}

func cycle[T comparable](values []T, current T, step int) T {
	idx := 0
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(values)) % len(values)
	return values[idx]
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
