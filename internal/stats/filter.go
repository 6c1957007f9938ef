package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
)

const dateLayout = "2006-01-02"

// ParseSince resolves a since value relative to now. It accepts "all" or an
// empty string for no bound, "<n>d" for the last n days, and YYYY-MM-DD.
func ParseSince(value string, now time.Time) (*time.Time, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "all" {
		return nil, nil
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			if n <= 0 {
				return nil, fmt.Errorf("invalid since %q (days must be > 0)", value)
			}
			t := now.AddDate(0, 0, -n)
			return &t, nil
		}
	}
	parsed, err := time.ParseInLocation(dateLayout, v, now.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid since %q (use 7d, 30d, all or YYYY-MM-DD)", value)
	}
	return &parsed, nil
}

// ParseModeFilter parses an optional mode. Empty and "any" match every mode.
func ParseModeFilter(value string) (model.Mode, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "any") {
		return "", nil
	}
	return model.ParseMode(v)
}

// ParseDifficultyFilter parses an optional difficulty. Empty and "any" match
// every difficulty.
func ParseDifficultyFilter(value string) (model.Difficulty, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "any") {
		return "", nil
	}
	return model.ParseDifficulty(v)
}

// DescribeFilter renders cfg as a one-line settings summary.
func DescribeFilter(cfg model.StatsConfig) string {
	profile := orAny(cfg.Filter.Profile)
	since := cfg.Since
	if since == "" {
		since = "all"
	}
	last := "all"
	if cfg.Filter.Last > 0 {
		last = strconv.Itoa(cfg.Filter.Last)
	}
	return fmt.Sprintf("profile=%s  mode=%s  difficulty=%s  since=%s  last=%s  window=%d",
		profile, orAny(string(cfg.Filter.Mode)), orAny(string(cfg.Filter.Difficulty)), since, last, cfg.CurveWindow)
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}
