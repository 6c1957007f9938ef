package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// textTable lays out plain-text columns sized to their widest cell.
type textTable struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func (t textTable) widths() []int {
	widths := make([]int, len(t.headers))
	grow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	grow(t.headers)
	for _, row := range t.rows {
		grow(row)
	}
	return widths
}

func (t textTable) lines() []string {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.line(t.headers, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t textTable) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", max(0, width-runewidth.StringWidth(cell)))
		if t.right[i] {
			parts[i] = pad + cell
		} else {
			parts[i] = cell + pad
		}
	}
	return strings.Join(parts, " ")
}

// write prints the table with trailing spaces removed.
func (t textTable) write(w io.Writer) error {
	for _, line := range t.lines() {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
