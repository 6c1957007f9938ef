// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig                   `toml:"practice"`
	Stats    StatsConfig                      `toml:"stats"`
	Rules    map[string]map[string]RuleConfig `toml:"rules"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode       *string `toml:"mode"`
	Difficulty *string `toml:"difficulty"`
	Duration   *int    `toml:"duration"`
	Profile    *string `toml:"profile"`
	FeedbackMs *int    `toml:"feedback-ms"`
}

// StatsConfig maps stats view defaults.
type StatsConfig struct {
	Last        *int `toml:"last"`
	CurveWindow *int `toml:"curve-window"`
}

// RuleConfig overrides one mode of one difficulty tier. Ranges are
// two-element [min, max] arrays.
type RuleConfig struct {
	Left          []int `toml:"left"`
	Right         []int `toml:"right"`
	MaxSum        *int  `toml:"max-sum"`
	AllowNegative *bool `toml:"allow-negative"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
