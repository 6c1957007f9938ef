// Package main provides the CLI entrypoint for tuimath.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuimath/internal/config"
	"github.com/verte-zerg/tuimath/internal/generator"
	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
	"github.com/verte-zerg/tuimath/internal/stats"
	"github.com/verte-zerg/tuimath/internal/statsui"
	"github.com/verte-zerg/tuimath/internal/store"
	"github.com/verte-zerg/tuimath/internal/tui"
)

const (
	defaultMode        = string(model.ModeAdd)
	defaultDifficulty  = string(model.DifficultyEasy)
	defaultDuration    = session.DefaultDuration
	defaultCurveWindow = 20
	defaultHistoryLast = 10
	queryTimeout       = 5 * time.Second
)

var defaultFeedbackMs = int(session.DefaultFeedbackDelay / time.Millisecond)

var (
	practiceMode       string
	practiceDifficulty string
	practiceDuration   int
	practiceProfile    string
	practiceGuest      bool
	practiceFeedbackMs int
	practiceSeed       int64

	statsProfile     string
	statsMode        string
	statsDifficulty  string
	statsSince       string
	statsLast        int
	statsCurveWindow int

	historyProfile    string
	historyMode       string
	historyDifficulty string
	historySince      string
	historyLast       int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuimath",
		Short:         "TUI timed arithmetic trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "problem mode: add, subtract, multiply or mixed")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty: easy, medium or hard")
	rootCmd.Flags().IntVar(&practiceDuration, "duration", defaultDuration, "session length in seconds")
	rootCmd.Flags().StringVar(&practiceProfile, "profile", defaultProfile(), "profile to save sessions under")
	rootCmd.Flags().BoolVar(&practiceGuest, "guest", false, "practice without saving sessions")
	rootCmd.Flags().IntVar(&practiceFeedbackMs, "feedback-ms", defaultFeedbackMs, "how long answer feedback is shown, in milliseconds")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed for problem generation (0 = time based)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyIntConfig(cmd, "duration", &practiceDuration, fileCfg.Practice.Duration)
	applyStringConfig(cmd, "profile", &practiceProfile, fileCfg.Practice.Profile)
	applyIntConfig(cmd, "feedback-ms", &practiceFeedbackMs, fileCfg.Practice.FeedbackMs)

	cfg, err := sessionConfig()
	if err != nil {
		return err
	}
	if practiceFeedbackMs <= 0 {
		return fmt.Errorf("--feedback-ms must be > 0")
	}
	rules, err := loadRules(fileCfg)
	if err != nil {
		return err
	}

	profile := strings.TrimSpace(practiceProfile)
	if practiceGuest {
		profile = ""
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	gen := newGenerator(rules)
	ctrl := session.New(gen, store.NewSaver(st, profile), cfg)
	feedback := time.Duration(practiceFeedbackMs) * time.Millisecond
	program := tea.NewProgram(tui.NewModel(ctrl, st, profile, feedback), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func sessionConfig() (model.SessionConfig, error) {
	mode, err := model.ParseMode(practiceMode)
	if err != nil {
		return model.SessionConfig{}, fmt.Errorf("--mode: %w", err)
	}
	difficulty, err := model.ParseDifficulty(practiceDifficulty)
	if err != nil {
		return model.SessionConfig{}, fmt.Errorf("--difficulty: %w", err)
	}
	if practiceDuration <= 0 {
		return model.SessionConfig{}, fmt.Errorf("--duration must be > 0")
	}
	return model.SessionConfig{Mode: mode, Difficulty: difficulty, Duration: practiceDuration}, nil
}

func newGenerator(rules generator.Rules) *generator.Generator {
	if practiceSeed == 0 {
		return generator.New(rules)
	}
	return generator.NewWithRand(rand.New(rand.NewSource(practiceSeed)), rules)
}

func loadRules(fileCfg config.FileConfig) (generator.Rules, error) {
	rules, err := fileCfg.ApplyRules(generator.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := generator.ValidateRules(rules); err != nil {
		return nil, fmt.Errorf("invalid difficulty rules:\n%w", err)
	}
	return rules, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the effective difficulty rules",
		Args:  cobra.NoArgs,
		RunE:  runRulesCmd,
	}
}

func runRulesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	rules, err := loadRules(fileCfg)
	if err != nil {
		return err
	}
	if err := stats.RenderRules(cmd.OutOrStdout(), rules); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse session stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsProfile, "profile", defaultProfile(), "profile filter (empty = all profiles)")
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "difficulty filter")
	cmd.Flags().StringVar(&statsSince, "since", "all", "time window: 7d, 30d, all or YYYY-MM-DD")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "profile", &statsProfile, fileCfg.Practice.Profile)
	applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	filter, err := historyFilter(statsProfile, statsMode, statsDifficulty, statsSince, statsLast)
	if err != nil {
		return err
	}
	cfg := model.StatsConfig{
		Filter:      filter,
		Since:       statsSince,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyProfile, "profile", defaultProfile(), "profile filter (empty = all profiles)")
	cmd.Flags().StringVar(&historyMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&historyDifficulty, "difficulty", "", "difficulty filter")
	cmd.Flags().StringVar(&historySince, "since", "all", "time window: 7d, 30d, all or YYYY-MM-DD")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "number of sessions to show (0 = all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "profile", &historyProfile, fileCfg.Practice.Profile)
	filter, err := historyFilter(historyProfile, historyMode, historyDifficulty, historySince, historyLast)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	report, err := stats.BuildReport(ctx, st, filter)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderHistory(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Sessions) == 0 && filter.Profile != "" {
		profiles, err := st.Profiles(ctx)
		if err != nil {
			logErrf("failed to list profiles: %v\n", err)
		} else if len(profiles) > 0 {
			logErrf("No sessions for profile %q. Known profiles: %s\n", filter.Profile, strings.Join(profiles, ", "))
		}
	}
	return nil
}

func historyFilter(profile, mode, difficulty, since string, last int) (model.HistoryFilter, error) {
	if last < 0 {
		return model.HistoryFilter{}, fmt.Errorf("--last must be >= 0")
	}
	m, err := stats.ParseModeFilter(mode)
	if err != nil {
		return model.HistoryFilter{}, fmt.Errorf("--mode: %w", err)
	}
	d, err := stats.ParseDifficultyFilter(difficulty)
	if err != nil {
		return model.HistoryFilter{}, fmt.Errorf("--difficulty: %w", err)
	}
	sinceTime, err := stats.ParseSince(since, time.Now())
	if err != nil {
		return model.HistoryFilter{}, fmt.Errorf("--since: %w", err)
	}
	return model.HistoryFilter{
		Profile:    strings.TrimSpace(profile),
		Mode:       m,
		Difficulty: d,
		Since:      sinceTime,
		Last:       last,
	}, nil
}

func defaultProfile() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "default"
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuimath configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q            # add, subtract, multiply or mixed
# difficulty = %q     # easy, medium or hard
# duration = %d            # Session length in seconds
# profile = "me"          # Profile sessions are saved under
# feedback-ms = %d         # How long answer feedback is shown

[stats]
# last = 0                # Limit stats to the last N sessions (0 = all)
# curve-window = %d       # Moving average window for learning curves

# Difficulty rules override the shipped table per difficulty and mode.
# Ranges are inclusive [min, max]. Run "tuimath rules" to see the result.
#
# [rules.easy.add]
# left = [1, 10]
# right = [1, 10]
# max-sum = 20            # 0 disables the cap
#
# [rules.hard.subtract]
# allow-negative = false
`,
		defaultMode,
		defaultDifficulty,
		defaultDuration,
		defaultFeedbackMs,
		defaultCurveWindow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
