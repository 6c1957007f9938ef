// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which operator problems use.
type Mode string

// Supported modes. ModeMixed picks one of the concrete modes per problem.
const (
	ModeAdd      Mode = "add"
	ModeSubtract Mode = "subtract"
	ModeMultiply Mode = "multiply"
	ModeMixed    Mode = "mixed"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeAdd, ModeSubtract, ModeMultiply, ModeMixed}

// ConcreteModes lists the modes that map to a single operator.
var ConcreteModes = []Mode{ModeAdd, ModeSubtract, ModeMultiply}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == strings.ToLower(strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (use add, subtract, multiply or mixed)", s)
}

// Label returns the on-screen label for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeAdd:
		return "+ addition"
	case ModeSubtract:
		return "- subtraction"
	case ModeMultiply:
		return "× multiplication"
	case ModeMixed:
		return "∞ mixed"
	default:
		return string(m)
	}
}

// Difficulty selects the operand ranges.
type Difficulty string

// Difficulty tiers.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every tier in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty parses a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if string(d) == strings.ToLower(strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (use easy, medium or hard)", s)
}

// Durations are the session lengths offered by the practice UI, in seconds.
var Durations = []int{15, 30, 60}

// Operator is the arithmetic operator of a problem.
type Operator string

// Operators rendered in problems.
const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "×"
)

// Apply computes left op right.
func (o Operator) Apply(left, right int) int {
	switch o {
	case OpSubtract:
		return left - right
	case OpMultiply:
		return left * right
	default:
		return left + right
	}
}

// Problem is a single generated arithmetic problem.
type Problem struct {
	Left     int
	Right    int
	Operator Operator
	Answer   int
}

// String renders the problem without its answer.
func (p Problem) String() string {
	return fmt.Sprintf("%d %s %d", p.Left, p.Operator, p.Right)
}

// SessionConfig defines practice settings.
type SessionConfig struct {
	Mode       Mode
	Difficulty Difficulty
	Duration   int
}

// SessionSummary captures a completed timed session.
type SessionSummary struct {
	Mode       Mode
	Difficulty Difficulty
	Duration   int
	Correct    int
	Total      int
	Accuracy   float64
	PPM        float64
	Skipped    bool
}

// SessionRecord is a persisted session summary.
type SessionRecord struct {
	ID        string
	Profile   string
	CreatedAt time.Time
	SessionSummary
}

// HistoryFilter defines filters for loading stored sessions.
type HistoryFilter struct {
	Profile    string
	Mode       Mode
	Difficulty Difficulty
	Since      *time.Time
	Last       int
}

// UserStats summarizes stored sessions.
type UserStats struct {
	TotalSessions   int
	AverageAccuracy float64
	AveragePPM      float64
}

// StatsConfig defines stats view settings. Since is the raw --since value
// the filter's Since was resolved from.
type StatsConfig struct {
	Filter      HistoryFilter
	Since       string
	CurveWindow int
}
