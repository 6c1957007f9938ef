package statsui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"
)

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// sizedTable keeps a bubbles table sized to the body area.
type sizedTable struct {
	table.Model
	layout tableLayout
}

func newSizedTable() sizedTable {
	t := table.New(table.WithHeight(1))
	t.SetStyles(tableStyles())
	return sizedTable{Model: t}
}

func (t *sizedTable) setData(cols []table.Column, rows []table.Row, width, height int) {
	// Columns first so rows are rendered against the new column count.
	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(rows)
	t.layout.rowCount = len(rows)
	t.layout.colCount = len(cols)
	t.layout.width = -1
	t.setSize(width, height)
}

func (t *sizedTable) setSize(width, height int) {
	viewportHeight := max(1, height-1)
	if t.layout.width == width && t.layout.height == viewportHeight {
		return
	}
	t.layout.width = width
	t.layout.height = viewportHeight
	t.SetWidth(width)
	t.SetHeight(viewportHeight)
	viewportHeight = t.adjustHeight(height)
	if t.layout.height != viewportHeight {
		t.layout.height = viewportHeight
		t.SetHeight(viewportHeight)
	}
}

// adjustHeight corrects the table height so the rendered view, header
// included, fills exactly bodyHeight lines.
func (t *sizedTable) adjustHeight(bodyHeight int) int {
	target := max(1, bodyHeight)
	height := t.Height()
	viewHeight := lipgloss.Height(t.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	t.SetHeight(height)
	viewHeight = lipgloss.Height(t.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func tableStyles() table.Styles {
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

func historyTableData(sessions []model.SessionRecord) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Mode", Width: 9},
		{Title: "Difficulty", Width: 10},
		{Title: "Time", Width: 5},
		{Title: "Correct", Width: 8},
		{Title: "Accuracy", Width: 9},
		{Title: "PPM", Width: 6},
		{Title: "", Width: 9},
	}
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, table.Row(stats.HistoryRow(s)))
	}
	return columns, rows
}

func breakdownTableData(breakdown []stats.BreakdownRow) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Mode", Width: 9},
		{Title: "Difficulty", Width: 10},
		{Title: "Sessions", Width: 8},
		{Title: "Correct", Width: 10},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg PPM", Width: 8},
		{Title: "Best PPM", Width: 8},
	}
	rows := make([]table.Row, 0, len(breakdown))
	for _, b := range breakdown {
		rows = append(rows, table.Row{
			string(b.Mode),
			string(b.Difficulty),
			fmt.Sprintf("%d", b.Sessions),
			fmt.Sprintf("%d/%d", b.Correct, b.Total),
			fmt.Sprintf("%.1f%%", b.Accuracy),
			fmt.Sprintf("%.1f", b.AvgPPM),
			fmt.Sprintf("%.1f", b.BestPPM),
		})
	}
	return columns, rows
}
