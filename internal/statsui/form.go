package statsui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"
)

const (
	fieldProfile = iota
	fieldMode
	fieldDifficulty
	fieldSince
	fieldLast
	fieldWindow
	fieldCount
)

var fieldPrompts = [fieldCount]string{
	fieldProfile:    "Profile: ",
	fieldMode:       "Mode (add|subtract|multiply|mixed|any): ",
	fieldDifficulty: "Difficulty (easy|medium|hard|any): ",
	fieldSince:      "Since (7d|30d|all|YYYY-MM-DD): ",
	fieldLast:       "Last: ",
	fieldWindow:     "Curve window: ",
}

// settingsForm edits the report filter in place of the body.
type settingsForm struct {
	open   bool
	inputs [fieldCount]textinput.Model
	active int
	err    string
}

func newSettingsForm() settingsForm {
	var f settingsForm
	for i, prompt := range fieldPrompts {
		input := textinput.New()
		input.Prompt = prompt
		input.Cursor.SetMode(cursor.CursorBlink)
		f.inputs[i] = input
	}
	return f
}

// show fills the inputs from cfg and focuses the first field.
func (f *settingsForm) show(cfg model.StatsConfig) tea.Cmd {
	last := ""
	if cfg.Filter.Last > 0 {
		last = strconv.Itoa(cfg.Filter.Last)
	}
	values := [fieldCount]string{
		fieldProfile:    cfg.Filter.Profile,
		fieldMode:       string(cfg.Filter.Mode),
		fieldDifficulty: string(cfg.Filter.Difficulty),
		fieldSince:      cfg.Since,
		fieldLast:       last,
		fieldWindow:     strconv.Itoa(cfg.CurveWindow),
	}
	for i, v := range values {
		f.inputs[i].SetValue(v)
	}
	f.open = true
	f.err = ""
	return f.focus(0)
}

func (f *settingsForm) hide() {
	f.open = false
	f.err = ""
}

func (f *settingsForm) focus(idx int) tea.Cmd {
	f.active = (idx + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.active {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f *settingsForm) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-lipgloss.Width(f.inputs[i].Prompt)-2)
	}
}

// update edits the focused field and moves between fields.
func (f *settingsForm) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		return f.focus(f.active + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return f.focus(f.active - 1)
	}
	var cmd tea.Cmd
	f.inputs[f.active], cmd = f.inputs[f.active].Update(msg)
	return cmd
}

func (f *settingsForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// config parses the form into a stats config. Relative windows are resolved
// against now.
func (f *settingsForm) config(now time.Time) (model.StatsConfig, error) {
	mode, err := stats.ParseModeFilter(f.value(fieldMode))
	if err != nil {
		return model.StatsConfig{}, err
	}
	difficulty, err := stats.ParseDifficultyFilter(f.value(fieldDifficulty))
	if err != nil {
		return model.StatsConfig{}, err
	}
	since, err := stats.ParseSince(f.value(fieldSince), now)
	if err != nil {
		return model.StatsConfig{}, err
	}
	last, err := optionalInt(f.value(fieldLast), 0)
	if err != nil || last < 0 {
		return model.StatsConfig{}, fmt.Errorf("invalid last value (use 0 or positive integer)")
	}
	window, err := optionalInt(f.value(fieldWindow), 1)
	if err != nil || window < 1 {
		return model.StatsConfig{}, fmt.Errorf("invalid curve window (use integer >= 1)")
	}
	return model.StatsConfig{
		Filter: model.HistoryFilter{
			Profile:    f.value(fieldProfile),
			Mode:       mode,
			Difficulty: difficulty,
			Since:      since,
			Last:       last,
		},
		Since:       f.value(fieldSince),
		CurveWindow: window,
	}, nil
}

func (f *settingsForm) view() string {
	lines := make([]string, 0, fieldCount+2)
	lines = append(lines, "Settings (enter to apply, esc to cancel)")
	for _, input := range f.inputs {
		lines = append(lines, input.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func optionalInt(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}
