// Package session implements the timed practice state machine.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"
)

const (
	// DefaultDuration is used when a controller is built without a duration.
	DefaultDuration = 30
	// DefaultFeedbackDelay is how long answer feedback stays on screen.
	DefaultFeedbackDelay = 50 * time.Millisecond
	// TickInterval is the countdown resolution.
	TickInterval = time.Second
	// PersistTimeout bounds a single persistence call.
	PersistTimeout = 5 * time.Second
)

// ErrNotAuthenticated is returned by persisters when no profile is signed in.
// It is an expected outcome, not a failure.
var ErrNotAuthenticated = errors.New("not authenticated")

// GameState is the phase of a session.
type GameState int

// Session phases.
const (
	StateIdle GameState = iota
	StateRunning
	StateFinished
)

func (s GameState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Feedback is the transient verdict shown after a submission.
type Feedback int

// Feedback values.
const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackIncorrect
)

// State is a snapshot of the current run.
type State struct {
	GameState GameState
	TimeLeft  int
	Problem   model.Problem
	Input     string
	Correct   int
	Total     int
	Skipped   bool
	Feedback  Feedback
}

// ProblemSource produces problems for a mode and difficulty.
type ProblemSource interface {
	Generate(mode model.Mode, difficulty model.Difficulty) model.Problem
}

// Persister stores finished sessions and returns the stored ID.
type Persister interface {
	PersistSession(ctx context.Context, summary model.SessionSummary) (string, error)
}

// PersistResult reports the outcome of persisting a finished session.
type PersistResult struct {
	Summary model.SessionSummary
	ID      string
	Err     error
}

// Guest reports whether the session was not saved because no profile is set.
func (r PersistResult) Guest() bool {
	return errors.Is(r.Err, ErrNotAuthenticated)
}

// Controller owns the configuration and state of one timed session at a
// time. It is not safe for concurrent use; callers serialize events.
type Controller struct {
	cfg       model.SessionConfig
	gen       ProblemSource
	persister Persister

	state State
	timer Timer

	feedbackSeq     uint64
	feedbackPending bool

	persistCh chan PersistResult
}

// New constructs an idle controller. persister may be nil.
func New(gen ProblemSource, persister Persister, cfg model.SessionConfig) *Controller {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	c := &Controller{cfg: cfg, gen: gen, persister: persister}
	c.reset()
	return c
}

// Config returns the session configuration.
func (c *Controller) Config() model.SessionConfig {
	return c.cfg
}

// State returns a snapshot of the current run.
func (c *Controller) State() State {
	return c.state
}

// TimerID returns the id ticks for the current schedule must carry.
func (c *Controller) TimerID() uint64 {
	return c.timer.ID()
}

// TimerActive reports whether the countdown is running.
func (c *Controller) TimerActive() bool {
	return c.timer.Active()
}

// FeedbackSeq returns the sequence number Advance expects and whether
// feedback is waiting to be cleared.
func (c *Controller) FeedbackSeq() (uint64, bool) {
	return c.feedbackSeq, c.feedbackPending
}

// SetMode changes the mode. Ignored unless idle.
func (c *Controller) SetMode(mode model.Mode) bool {
	if c.state.GameState != StateIdle || !validMode(mode) {
		return false
	}
	c.cfg.Mode = mode
	return true
}

// SetDifficulty changes the difficulty. Ignored unless idle.
func (c *Controller) SetDifficulty(difficulty model.Difficulty) bool {
	if c.state.GameState != StateIdle || !validDifficulty(difficulty) {
		return false
	}
	c.cfg.Difficulty = difficulty
	return true
}

// SetDuration changes the duration in seconds. Ignored unless idle.
func (c *Controller) SetDuration(seconds int) bool {
	if c.state.GameState != StateIdle || seconds <= 0 {
		return false
	}
	c.cfg.Duration = seconds
	c.state.TimeLeft = seconds
	return true
}

// StartTest begins a run with a fresh problem and a full countdown.
func (c *Controller) StartTest() bool {
	if c.state.GameState != StateIdle {
		return false
	}
	c.state = State{
		GameState: StateRunning,
		TimeLeft:  c.cfg.Duration,
		Problem:   c.next(),
	}
	c.feedbackPending = false
	c.timer.start()
	return true
}

// Tick advances the countdown by one second for schedule id. It returns
// true while the schedule should keep ticking.
func (c *Controller) Tick(id uint64) bool {
	if c.state.GameState != StateRunning || !c.timer.Live(id) {
		return false
	}
	if c.state.TimeLeft <= 1 {
		c.state.TimeLeft = 0
		c.finish()
		return false
	}
	c.state.TimeLeft--
	return true
}

// SubmitAnswer records the typed input. Once the input is as long as the
// expected answer and parses as an integer it is scored; it returns true
// when a submission was scored.
func (c *Controller) SubmitAnswer(input string) bool {
	if c.state.GameState != StateRunning || c.feedbackPending {
		return false
	}
	c.state.Input = input
	answer := c.state.Problem.Answer
	if len(input) < len(strconv.Itoa(answer)) {
		return false
	}
	value, err := strconv.Atoi(input)
	if err != nil {
		return false
	}
	c.state.Total++
	if value == answer {
		c.state.Correct++
		c.state.Feedback = FeedbackCorrect
	} else {
		c.state.Feedback = FeedbackIncorrect
	}
	c.feedbackSeq++
	c.feedbackPending = true
	return true
}

// Advance clears the feedback of submission seq and shows the next problem.
// Stale sequence numbers are ignored.
func (c *Controller) Advance(seq uint64) bool {
	if c.state.GameState != StateRunning || !c.feedbackPending || seq != c.feedbackSeq {
		return false
	}
	c.feedbackPending = false
	c.state.Feedback = FeedbackNone
	c.state.Input = ""
	c.state.Problem = c.next()
	return true
}

// Skip counts the current problem as attempted and moves on.
func (c *Controller) Skip() bool {
	if c.state.GameState != StateRunning || c.feedbackPending {
		return false
	}
	c.state.Total++
	c.state.Input = ""
	c.state.Feedback = FeedbackNone
	c.state.Problem = c.next()
	return true
}

// ForceFinish ends the run early and marks it skipped.
func (c *Controller) ForceFinish() bool {
	if c.state.GameState != StateRunning {
		return false
	}
	c.state.Skipped = true
	c.finish()
	return true
}

// Cancel discards the run and returns to idle.
func (c *Controller) Cancel() bool {
	if c.state.GameState != StateRunning {
		return false
	}
	c.timer.stop()
	c.reset()
	return true
}

// Restart leaves the results screen and returns to idle.
func (c *Controller) Restart() bool {
	if c.state.GameState != StateFinished {
		return false
	}
	c.reset()
	return true
}

// Elapsed returns the seconds played in the current run.
func (c *Controller) Elapsed() int {
	if c.state.GameState == StateIdle {
		return 0
	}
	return c.cfg.Duration - c.state.TimeLeft
}

// Summary computes the derived statistics of the current run.
func (c *Controller) Summary() model.SessionSummary {
	return model.SessionSummary{
		Mode:       c.cfg.Mode,
		Difficulty: c.cfg.Difficulty,
		Duration:   c.cfg.Duration,
		Correct:    c.state.Correct,
		Total:      c.state.Total,
		Accuracy:   stats.Accuracy(c.state.Correct, c.state.Total),
		PPM:        stats.PPM(c.state.Total, c.Elapsed()),
		Skipped:    c.state.Skipped,
	}
}

// TakePersistResult returns the channel carrying the result of the last
// persistence call and forgets it. It returns nil when nothing was persisted
// since the previous call.
func (c *Controller) TakePersistResult() <-chan PersistResult {
	ch := c.persistCh
	c.persistCh = nil
	return ch
}

func (c *Controller) finish() {
	c.timer.stop()
	c.feedbackPending = false
	c.state.GameState = StateFinished
	if c.state.Total == 0 || c.persister == nil {
		return
	}
	c.persist(c.Summary())
}

func (c *Controller) persist(summary model.SessionSummary) {
	ch := make(chan PersistResult, 1)
	c.persistCh = ch
	p := c.persister
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PersistTimeout)
		defer cancel()
		id, err := p.PersistSession(ctx, summary)
		ch <- PersistResult{Summary: summary, ID: id, Err: err}
	}()
}

func (c *Controller) reset() {
	c.state = State{GameState: StateIdle, TimeLeft: c.cfg.Duration}
	c.feedbackPending = false
}

func (c *Controller) next() model.Problem {
	return c.gen.Generate(c.cfg.Mode, c.cfg.Difficulty)
}

func validMode(mode model.Mode) bool {
	for _, m := range model.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func validDifficulty(difficulty model.Difficulty) bool {
	for _, d := range model.Difficulties {
		if d == difficulty {
			return true
		}
	}
	return false
}
