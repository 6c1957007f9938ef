// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuimath/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Accuracy returns the percentage of correct answers, rounded to one decimal.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round1(float64(correct) / float64(total) * 100)
}

// PPM returns problems per minute over elapsedSeconds, rounded to one decimal.
func PPM(total, elapsedSeconds int) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return Round1(float64(total) / float64(elapsedSeconds) * 60)
}

// Summarize averages accuracy and PPM over records.
func Summarize(records []model.SessionRecord) model.UserStats {
	if len(records) == 0 {
		return model.UserStats{}
	}
	var accSum, ppmSum float64
	for _, r := range records {
		accSum += r.Accuracy
		ppmSum += r.PPM
	}
	count := float64(len(records))
	return model.UserStats{
		TotalSessions:   len(records),
		AverageAccuracy: Round1(accSum / count),
		AveragePPM:      Round1(ppmSum / count),
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	top := float64(len(sparkChars) - 1)
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * top))
		b.WriteByte(sparkChars[clamp(idx, 0, len(sparkChars)-1)])
	}
	return b.String()
}

// RenderSummary prints aggregate stats for sessions.
func RenderSummary(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(records)
	best := 0.0
	for _, r := range records {
		if r.PPM > best {
			best = r.PPM
		}
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.TotalSessions),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AverageAccuracy),
		fmt.Sprintf("Avg PPM: %.1f", s.AveragePPM),
		fmt.Sprintf("Best PPM: %.1f", best),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints one row per session, newest first.
func RenderHistory(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent Sessions"); err != nil {
		return err
	}
	headers := []string{"Date", "Mode", "Difficulty", "Time", "Correct", "Accuracy", "PPM", ""}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, HistoryRow(r))
	}
	table := textTable{headers: headers, rows: rows, right: map[int]bool{3: true, 4: true, 5: true, 6: true}}
	if err := table.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRow formats a record as table cells.
func HistoryRow(r model.SessionRecord) []string {
	flag := ""
	if r.Skipped {
		flag = "(skipped)"
	}
	return []string{
		r.CreatedAt.Local().Format("Jan 2 15:04"),
		string(r.Mode),
		string(r.Difficulty),
		fmt.Sprintf("%ds", r.Duration),
		fmt.Sprintf("%d/%d", r.Correct, r.Total),
		fmt.Sprintf("%.1f%%", r.Accuracy),
		fmt.Sprintf("%.1f", r.PPM),
		flag,
	}
}

// RenderCurves prints accuracy and PPM learning curves.
func RenderCurves(w io.Writer, records []model.SessionRecord, window int) error {
	return RenderCurvesWithSize(w, records, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
// Records are expected newest first, as returned by the store.
func RenderCurvesWithSize(w io.Writer, records []model.SessionRecord, window, totalWidth, height int, useColor bool) error {
	if len(records) == 0 {
		return nil
	}
	accs := make([]float64, len(records))
	ppms := make([]float64, len(records))
	for i, r := range records {
		j := len(records) - 1 - i
		accs[j] = r.Accuracy
		ppms[j] = r.PPM
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "PPM", Values: MovingAverage(ppms, window)},
	}, width, height, useColor)
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
