package stats

import (
	"sort"

	"github.com/verte-zerg/tuimath/internal/model"
)

// BreakdownRow aggregates sessions sharing a mode and difficulty.
type BreakdownRow struct {
	Mode       model.Mode
	Difficulty model.Difficulty
	Sessions   int
	Correct    int
	Total      int
	Accuracy   float64
	AvgPPM     float64
	BestPPM    float64
}

// Breakdown groups records by mode and difficulty, weakest accuracy first.
func Breakdown(records []model.SessionRecord) []BreakdownRow {
	type key struct {
		mode model.Mode
		diff model.Difficulty
	}
	groups := map[key]*BreakdownRow{}
	ppmSums := map[key]float64{}
	for _, r := range records {
		k := key{r.Mode, r.Difficulty}
		row, ok := groups[k]
		if !ok {
			row = &BreakdownRow{Mode: r.Mode, Difficulty: r.Difficulty}
			groups[k] = row
		}
		row.Sessions++
		row.Correct += r.Correct
		row.Total += r.Total
		ppmSums[k] += r.PPM
		if r.PPM > row.BestPPM {
			row.BestPPM = r.PPM
		}
	}
	out := make([]BreakdownRow, 0, len(groups))
	for k, row := range groups {
		row.Accuracy = Accuracy(row.Correct, row.Total)
		row.AvgPPM = Round1(ppmSums[k] / float64(row.Sessions))
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy < out[j].Accuracy
		}
		if out[i].Mode != out[j].Mode {
			return out[i].Mode < out[j].Mode
		}
		return out[i].Difficulty < out[j].Difficulty
	})
	return out
}
