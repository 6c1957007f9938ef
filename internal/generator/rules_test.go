package generator

import (
	"strings"
	"testing"

	"github.com/verte-zerg/tuimath/internal/model"
)

func TestDefaultRulesAreValid(t *testing.T) {
	if err := ValidateRules(DefaultRules()); err != nil {
		t.Fatalf("expected shipped rules to validate, got %v", err)
	}
}

func TestDefaultRulesNeverAllowNegative(t *testing.T) {
	for d, r := range DefaultRules() {
		if r.Subtract.AllowNegative {
			t.Fatalf("expected %s subtraction to disallow negatives", d)
		}
	}
}

func TestValidateRulesRejectsInvertedRange(t *testing.T) {
	rules := DefaultRules()
	r := rules[model.DifficultyMedium]
	r.Multiply.Left = Range{Min: 9, Max: 2}
	rules[model.DifficultyMedium] = r

	err := ValidateRules(rules)
	if err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if !strings.Contains(err.Error(), "medium: multiply.left range min 9 > max 2") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRulesRejectsUnreachableMaxSum(t *testing.T) {
	rules := DefaultRules()
	r := rules[model.DifficultyEasy]
	r.Add = AddRule{Left: Range{15, 20}, Right: Range{10, 20}, MaxSum: 20}
	rules[model.DifficultyEasy] = r

	err := ValidateRules(rules)
	if err == nil {
		t.Fatalf("expected error for unreachable max sum")
	}
	if !strings.Contains(err.Error(), "smallest possible sum 25") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRulesRejectsMissingTier(t *testing.T) {
	rules := DefaultRules()
	delete(rules, model.DifficultyHard)
	if err := ValidateRules(rules); err == nil || !strings.Contains(err.Error(), "hard: missing rules") {
		t.Fatalf("expected missing tier error, got %v", err)
	}
}
