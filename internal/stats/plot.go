package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisWidth           = 4
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[33m", // yellow
	"\x1b[35m", // magenta
	"\x1b[32m", // green
}

// canvas is a grid of braille cells; each cell holds 2x4 dots.
type canvas struct {
	width  int
	height int
	cells  [][]uint8
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &canvas{width: width, height: height, cells: cells}
}

// set marks the dot at x (0..2*width) and y (0..4*height), origin top-left.
func (c *canvas) set(x, y int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= c.width || cy >= c.height {
		return
	}
	c.cells[cy][cx] |= dotMask(x%2, y%4)
}

// line draws a Bresenham segment between two dots.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func dotMask(x, y int) uint8 {
	if y == 3 {
		if x == 0 {
			return 0x40
		}
		return 0x80
	}
	return uint8(1) << uint(y+3*x)
}

// PlotSeries renders a multi-line braille plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plotSeries(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a braille plot with optional forced color output.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, width, height, forceColor)
}

func plotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	canvases := make([]*canvas, len(kept))
	ranges := make([][2]float64, len(kept))
	for i, s := range kept {
		values := resample(s.Values, width)
		lo, hi := minMax(values)
		if hi-lo < 1e-9 {
			lo--
			hi++
		}
		ranges[i] = [2]float64{lo, hi}
		canvases[i] = newCanvas(width, height)
		dots := height * 4
		prevX, prevY := -1, -1
		for x, v := range values {
			y := clamp(int(math.Round((hi-v)/(hi-lo)*float64(dots-1))), 0, dots-1)
			px := x * 2
			if prevX >= 0 {
				canvases[i].line(prevX, prevY, px, y)
			} else {
				canvases[i].set(px, y)
			}
			prevX, prevY = px, y
		}
	}

	useColor := shouldUseColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for i, s := range kept {
		fmt.Fprintf(&b, "%s: min=%.1f max=%.1f\n", s.Name, ranges[i][0], ranges[i][1])
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = "max"
		case height - 1:
			label = "min"
		}
		fmt.Fprintf(&b, "%*s%s", axisWidth, label, axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, c := range canvases {
				if m := c.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				b.WriteString(colorPalette[owner%len(colorPalette)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
			} else {
				b.WriteRune(ch)
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(kept, useColor) + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := "⣿ " + s.Name
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	width := totalWidth - axisWidth - utf8.RuneCountInString(axisSeparator)
	if width < minPlotWidth {
		return minPlotWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
