package config

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/tuimath/internal/generator"
	"github.com/verte-zerg/tuimath/internal/model"
)

// ApplyRules overlays the [rules] tables on base and returns the result.
// base is not modified. The result is not validated.
func (c FileConfig) ApplyRules(base generator.Rules) (generator.Rules, error) {
	out := make(generator.Rules, len(base))
	for d, r := range base {
		out[d] = r
	}
	for _, diffName := range sortedKeys(c.Rules) {
		diff, err := model.ParseDifficulty(diffName)
		if err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
		tier := out[diff]
		modes := c.Rules[diffName]
		for _, modeName := range sortedKeys(modes) {
			rc := modes[modeName]
			where := fmt.Sprintf("rules.%s.%s", diffName, modeName)
			left, err := overrideRange(where+".left", rc.Left)
			if err != nil {
				return nil, err
			}
			right, err := overrideRange(where+".right", rc.Right)
			if err != nil {
				return nil, err
			}
			switch modeName {
			case string(model.ModeAdd):
				if rc.AllowNegative != nil {
					return nil, fmt.Errorf("%s: allow-negative only applies to subtract", where)
				}
				applyRange(&tier.Add.Left, left)
				applyRange(&tier.Add.Right, right)
				if rc.MaxSum != nil {
					tier.Add.MaxSum = *rc.MaxSum
				}
			case string(model.ModeSubtract):
				if rc.MaxSum != nil {
					return nil, fmt.Errorf("%s: max-sum only applies to add", where)
				}
				applyRange(&tier.Subtract.Left, left)
				applyRange(&tier.Subtract.Right, right)
				if rc.AllowNegative != nil {
					tier.Subtract.AllowNegative = *rc.AllowNegative
				}
			case string(model.ModeMultiply):
				if rc.MaxSum != nil || rc.AllowNegative != nil {
					return nil, fmt.Errorf("%s: only left and right apply to multiply", where)
				}
				applyRange(&tier.Multiply.Left, left)
				applyRange(&tier.Multiply.Right, right)
			default:
				return nil, fmt.Errorf("%s: unknown mode %q (use add, subtract or multiply)", where, modeName)
			}
		}
		out[diff] = tier
	}
	return out, nil
}

func overrideRange(where string, values []int) (*generator.Range, error) {
	if values == nil {
		return nil, nil
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("%s: expected [min, max], got %d values", where, len(values))
	}
	return &generator.Range{Min: values[0], Max: values[1]}, nil
}

func applyRange(target, value *generator.Range) {
	if value == nil {
		return
	}
	*target = *value
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
