// Package generator builds arithmetic problems.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
)

// MaxRetries bounds the rejection sampling used for capped addition.
const MaxRetries = 1000

// Generator produces randomized problems from a rule table.
// Rules are expected to have passed ValidateRules.
type Generator struct {
	rnd   *rand.Rand
	rules Rules
}

// New returns a Generator over the given rules seeded with the current time.
func New(rules Rules) *Generator {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), rules)
}

// NewWithRand returns a Generator drawing from rnd.
func NewWithRand(rnd *rand.Rand, rules Rules) *Generator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Generator{rnd: rnd, rules: rules}
}

// Rules returns the rule table the generator draws from.
func (g *Generator) Rules() Rules {
	return g.rules
}

// Generate draws a problem for mode and difficulty. Mixed mode picks a
// concrete mode uniformly; unknown modes fall back to addition.
func (g *Generator) Generate(mode model.Mode, difficulty model.Difficulty) model.Problem {
	rules := g.rules[difficulty]
	switch mode {
	case model.ModeSubtract:
		return g.subtraction(rules.Subtract)
	case model.ModeMultiply:
		return g.multiplication(rules.Multiply)
	case model.ModeMixed:
		return g.Generate(model.ConcreteModes[g.rnd.Intn(len(model.ConcreteModes))], difficulty)
	default:
		return g.addition(rules.Add)
	}
}

func (g *Generator) addition(rule AddRule) model.Problem {
	left := g.draw(rule.Left)
	right := g.draw(rule.Right)
	for i := 1; rule.MaxSum > 0 && left+right > rule.MaxSum; i++ {
		if i >= MaxRetries {
			left, right = g.cappedPair(rule)
			break
		}
		left = g.draw(rule.Left)
		right = g.draw(rule.Right)
	}
	return model.Problem{Left: left, Right: right, Operator: model.OpAdd, Answer: left + right}
}

// cappedPair draws operands whose sum cannot exceed the cap.
func (g *Generator) cappedPair(rule AddRule) (int, int) {
	left := g.draw(Range{Min: rule.Left.Min, Max: minInt(rule.Left.Max, rule.MaxSum-rule.Right.Min)})
	right := g.draw(Range{Min: rule.Right.Min, Max: minInt(rule.Right.Max, rule.MaxSum-left)})
	return left, right
}

func (g *Generator) subtraction(rule SubtractRule) model.Problem {
	left := g.draw(rule.Left)
	right := g.draw(rule.Right)
	if !rule.AllowNegative && left < right {
		left, right = right, left
	}
	return model.Problem{Left: left, Right: right, Operator: model.OpSubtract, Answer: left - right}
}

func (g *Generator) multiplication(rule MultiplyRule) model.Problem {
	left := g.draw(rule.Left)
	right := g.draw(rule.Right)
	return model.Problem{Left: left, Right: right, Operator: model.OpMultiply, Answer: left * right}
}

func (g *Generator) draw(r Range) int {
	return r.Min + g.rnd.Intn(r.Max-r.Min+1)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
