package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const segmentGap = "  "

type styledSegment struct {
	s     string
	width int
}

// hintSegments renders key hints like "enter start" as styled segments.
func hintSegments(hints [][2]string) []styledSegment {
	out := make([]styledSegment, 0, len(hints))
	for _, h := range hints {
		key, desc := h[0], h[1]
		out = append(out, styledSegment{
			s:     keyStyle.Render(key) + " " + hintStyle.Render(desc),
			width: runewidth.StringWidth(key) + 1 + runewidth.StringWidth(desc),
		})
	}
	return out
}

func renderSegments(segments []styledSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.s)
	}
	return strings.Join(parts, segmentGap)
}

// wrapSegments packs segments into lines no wider than width. A segment
// wider than width gets a line of its own.
func wrapSegments(segments []styledSegment, width int) []string {
	if width <= 0 {
		return []string{renderSegments(segments)}
	}
	gap := runewidth.StringWidth(segmentGap)
	var lines []string
	line := make([]styledSegment, 0, len(segments))
	lineWidth := 0
	for _, seg := range segments {
		next := lineWidth + seg.width
		if len(line) > 0 {
			next += gap
		}
		if next > width && len(line) > 0 {
			lines = append(lines, renderSegments(line))
			line = line[:0]
			lineWidth = 0
			next = seg.width
		}
		line = append(line, seg)
		lineWidth = next
	}
	if len(line) > 0 {
		lines = append(lines, renderSegments(line))
	}
	return lines
}

// truncate cuts plain text to width display cells.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
