package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/tuimath/internal/generator"
	"github.com/verte-zerg/tuimath/internal/model"
)

// RenderRules prints the operand ranges of every difficulty tier.
func RenderRules(w io.Writer, rules generator.Rules) error {
	headers := []string{"Difficulty", "Mode", "Left", "Right", "Constraint"}
	var rows [][]string
	for _, d := range model.Difficulties {
		r, ok := rules[d]
		if !ok {
			continue
		}
		capLabel := ""
		if r.Add.MaxSum > 0 {
			capLabel = fmt.Sprintf("sum <= %d", r.Add.MaxSum)
		}
		negLabel := "result >= 0"
		if r.Subtract.AllowNegative {
			negLabel = "negatives allowed"
		}
		rows = append(rows,
			[]string{string(d), string(model.ModeAdd), r.Add.Left.String(), r.Add.Right.String(), capLabel},
			[]string{string(d), string(model.ModeSubtract), r.Subtract.Left.String(), r.Subtract.Right.String(), negLabel},
			[]string{string(d), string(model.ModeMultiply), r.Multiply.Left.String(), r.Multiply.Right.String(), ""},
		)
	}
	table := textTable{headers: headers, rows: rows, right: map[int]bool{2: true, 3: true}}
	return table.write(w)
}
