package statsui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// curveWindows are the moving average sizes offered by -/=.
var curveWindows = []int{1, 3, 5, 10, 20, 50, 100}

func nextCurveWindow(n int) int {
	for _, w := range curveWindows {
		if w > n {
			return w
		}
	}
	return curveWindows[len(curveWindows)-1]
}

func prevCurveWindow(n int) int {
	for i := len(curveWindows) - 1; i >= 0; i-- {
		if curveWindows[i] < n {
			return curveWindows[i]
		}
	}
	return curveWindows[0]
}

// fitLines pads every line to width and clips or fills to exactly height lines.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return padLines(strings.Join(lines, "\n"), width)
}

func padLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + strings.Repeat(" ", gap)
		}
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(s, width, tail)
}
