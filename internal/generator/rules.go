package generator

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/tuimath/internal/model"
)

// Range is an inclusive integer range. Min must not exceed Max.
type Range struct {
	Min int
	Max int
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// AddRule constrains addition problems. MaxSum of 0 disables the cap.
type AddRule struct {
	Left   Range
	Right  Range
	MaxSum int
}

// SubtractRule constrains subtraction problems.
type SubtractRule struct {
	Left          Range
	Right         Range
	AllowNegative bool
}

// MultiplyRule constrains multiplication problems.
type MultiplyRule struct {
	Left  Range
	Right Range
}

// DifficultyRules holds the per-mode rules of one difficulty tier.
type DifficultyRules struct {
	Add      AddRule
	Subtract SubtractRule
	Multiply MultiplyRule
}

// Rules maps each difficulty to its generation rules.
type Rules map[model.Difficulty]DifficultyRules

// DefaultRules returns the shipped rule table.
func DefaultRules() Rules {
	return Rules{
		model.DifficultyEasy: {
			Add:      AddRule{Left: Range{1, 10}, Right: Range{1, 10}, MaxSum: 20},
			Subtract: SubtractRule{Left: Range{1, 10}, Right: Range{1, 10}},
			Multiply: MultiplyRule{Left: Range{1, 9}, Right: Range{1, 9}},
		},
		model.DifficultyMedium: {
			Add:      AddRule{Left: Range{10, 50}, Right: Range{10, 50}},
			Subtract: SubtractRule{Left: Range{10, 50}, Right: Range{10, 50}},
			Multiply: MultiplyRule{Left: Range{10, 99}, Right: Range{1, 9}},
		},
		model.DifficultyHard: {
			Add:      AddRule{Left: Range{50, 999}, Right: Range{50, 999}},
			Subtract: SubtractRule{Left: Range{10, 999}, Right: Range{10, 999}},
			Multiply: MultiplyRule{Left: Range{10, 99}, Right: Range{10, 99}},
		},
	}
}

// ValidateRules checks that every tier is present, every range is ordered,
// and every addition cap can be met.
func ValidateRules(rules Rules) error {
	var errs []error
	for _, d := range model.Difficulties {
		r, ok := rules[d]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: missing rules", d))
			continue
		}
		checks := []struct {
			name string
			rng  Range
		}{
			{"add.left", r.Add.Left},
			{"add.right", r.Add.Right},
			{"subtract.left", r.Subtract.Left},
			{"subtract.right", r.Subtract.Right},
			{"multiply.left", r.Multiply.Left},
			{"multiply.right", r.Multiply.Right},
		}
		for _, c := range checks {
			if c.rng.Min > c.rng.Max {
				errs = append(errs, fmt.Errorf("%s: %s range min %d > max %d", d, c.name, c.rng.Min, c.rng.Max))
			}
		}
		if r.Add.MaxSum < 0 {
			errs = append(errs, fmt.Errorf("%s: add.max-sum must be >= 0", d))
		} else if r.Add.MaxSum > 0 && r.Add.Left.Min+r.Add.Right.Min > r.Add.MaxSum {
			errs = append(errs, fmt.Errorf("%s: add.max-sum %d is below the smallest possible sum %d",
				d, r.Add.MaxSum, r.Add.Left.Min+r.Add.Right.Min))
		}
	}
	return errors.Join(errs...)
}
