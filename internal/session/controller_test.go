package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuimath/internal/model"
)

type fakeGenerator struct {
	answers []int
	calls   int
	last    struct {
		mode       model.Mode
		difficulty model.Difficulty
	}
}

func (g *fakeGenerator) Generate(mode model.Mode, difficulty model.Difficulty) model.Problem {
	answer := 5
	if len(g.answers) > 0 {
		answer = g.answers[g.calls%len(g.answers)]
	}
	g.calls++
	g.last.mode = mode
	g.last.difficulty = difficulty
	return model.Problem{Left: answer, Right: 0, Operator: model.OpAdd, Answer: answer}
}

type fakePersister struct {
	mu        sync.Mutex
	summaries []model.SessionSummary
	err       error
}

func (p *fakePersister) PersistSession(_ context.Context, summary model.SessionSummary) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, summary)
	if p.err != nil {
		return "", p.err
	}
	return "session-1", nil
}

func (p *fakePersister) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.summaries)
}

func newController(t *testing.T, duration int, answers ...int) (*Controller, *fakeGenerator, *fakePersister) {
	t.Helper()
	gen := &fakeGenerator{answers: answers}
	p := &fakePersister{}
	c := New(gen, p, model.SessionConfig{Mode: model.ModeAdd, Difficulty: model.DifficultyEasy, Duration: duration})
	return c, gen, p
}

func waitResult(t *testing.T, c *Controller) PersistResult {
	t.Helper()
	ch := c.TakePersistResult()
	require.NotNil(t, ch, "expected a persistence call")
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for persistence")
	}
	return PersistResult{}
}

func submitAndAdvance(t *testing.T, c *Controller, input string) {
	t.Helper()
	require.True(t, c.SubmitAnswer(input))
	seq, pending := c.FeedbackSeq()
	require.True(t, pending)
	require.True(t, c.Advance(seq))
}

func TestNewDefaults(t *testing.T) {
	c := New(&fakeGenerator{}, nil, model.SessionConfig{Mode: model.ModeAdd, Difficulty: model.DifficultyEasy})
	state := c.State()
	assert.Equal(t, StateIdle, state.GameState)
	assert.Equal(t, DefaultDuration, c.Config().Duration)
	assert.Equal(t, DefaultDuration, state.TimeLeft)
	assert.False(t, c.TimerActive())
}

func TestIdleIgnoresRunningEvents(t *testing.T) {
	c, gen, _ := newController(t, 30)

	assert.False(t, c.SubmitAnswer("5"))
	assert.False(t, c.Skip())
	assert.False(t, c.ForceFinish())
	assert.False(t, c.Cancel())
	assert.False(t, c.Restart())
	assert.False(t, c.Tick(c.TimerID()))
	assert.False(t, c.Advance(0))
	assert.Equal(t, StateIdle, c.State().GameState)
	assert.Equal(t, 0, gen.calls)
}

func TestConfigChangesOnlyWhileIdle(t *testing.T) {
	c, gen, _ := newController(t, 30)

	require.True(t, c.SetMode(model.ModeMixed))
	require.True(t, c.SetDifficulty(model.DifficultyHard))
	require.True(t, c.SetDuration(15))
	assert.Equal(t, 15, c.State().TimeLeft)
	assert.False(t, c.SetMode(model.Mode("divide")))
	assert.False(t, c.SetDifficulty(model.Difficulty("insane")))
	assert.False(t, c.SetDuration(0))

	require.True(t, c.StartTest())
	assert.Equal(t, model.ModeMixed, gen.last.mode)
	assert.Equal(t, model.DifficultyHard, gen.last.difficulty)

	assert.False(t, c.SetMode(model.ModeAdd))
	assert.False(t, c.SetDifficulty(model.DifficultyEasy))
	assert.False(t, c.SetDuration(60))
	cfg := c.Config()
	assert.Equal(t, model.ModeMixed, cfg.Mode)
	assert.Equal(t, model.DifficultyHard, cfg.Difficulty)
	assert.Equal(t, 15, cfg.Duration)

	require.True(t, c.ForceFinish())
	assert.False(t, c.SetMode(model.ModeAdd))
	assert.False(t, c.SetDuration(60))
}

func TestStartTestResetsRun(t *testing.T) {
	c, gen, _ := newController(t, 30, 7)

	require.True(t, c.StartTest())
	state := c.State()
	assert.Equal(t, StateRunning, state.GameState)
	assert.Equal(t, 30, state.TimeLeft)
	assert.Equal(t, 7, state.Problem.Answer)
	assert.Equal(t, 0, state.Correct)
	assert.Equal(t, 0, state.Total)
	assert.Equal(t, "", state.Input)
	assert.False(t, state.Skipped)
	assert.Equal(t, FeedbackNone, state.Feedback)
	assert.True(t, c.TimerActive())
	assert.Equal(t, 1, gen.calls)

	assert.False(t, c.StartTest(), "start while running must be ignored")
}

func TestTickCountsDownAndFinishes(t *testing.T) {
	c, _, p := newController(t, 3)
	require.True(t, c.StartTest())
	id := c.TimerID()

	require.True(t, c.Tick(id))
	assert.Equal(t, 2, c.State().TimeLeft)
	require.True(t, c.Tick(id))
	assert.Equal(t, 1, c.State().TimeLeft)
	require.False(t, c.Tick(id))

	state := c.State()
	assert.Equal(t, StateFinished, state.GameState)
	assert.Equal(t, 0, state.TimeLeft)
	assert.False(t, state.Skipped)
	assert.False(t, c.TimerActive())
	assert.False(t, c.Tick(id))
	assert.Nil(t, c.TakePersistResult(), "empty sessions are not persisted")
	assert.Equal(t, 0, p.calls())
}

func TestStaleTickIsRejected(t *testing.T) {
	c, _, _ := newController(t, 30)
	require.True(t, c.StartTest())
	old := c.TimerID()
	require.True(t, c.Cancel())
	assert.False(t, c.Tick(old))

	require.True(t, c.StartTest())
	assert.NotEqual(t, old, c.TimerID())
	assert.False(t, c.Tick(old))
	assert.Equal(t, 30, c.State().TimeLeft)
	assert.True(t, c.Tick(c.TimerID()))
	assert.Equal(t, 29, c.State().TimeLeft)
}

func TestSubmitWaitsForAnswerLength(t *testing.T) {
	c, _, _ := newController(t, 30, 12, 5)
	require.True(t, c.StartTest())

	assert.False(t, c.SubmitAnswer("1"))
	state := c.State()
	assert.Equal(t, "1", state.Input)
	assert.Equal(t, 0, state.Total)

	require.True(t, c.SubmitAnswer("19"))
	state = c.State()
	assert.Equal(t, 1, state.Total)
	assert.Equal(t, 0, state.Correct)
	assert.Equal(t, FeedbackIncorrect, state.Feedback)
}

func TestSubmitLeadingZeroIsCorrect(t *testing.T) {
	c, _, _ := newController(t, 30, 5)
	require.True(t, c.StartTest())

	require.True(t, c.SubmitAnswer("05"))
	state := c.State()
	assert.Equal(t, 1, state.Correct)
	assert.Equal(t, 1, state.Total)
	assert.Equal(t, FeedbackCorrect, state.Feedback)
}

func TestSubmitNonNumericIsNotCounted(t *testing.T) {
	c, _, _ := newController(t, 30, 5)
	require.True(t, c.StartTest())

	assert.False(t, c.SubmitAnswer("a"))
	assert.False(t, c.SubmitAnswer("-"))
	state := c.State()
	assert.Equal(t, 0, state.Total)
	assert.Equal(t, FeedbackNone, state.Feedback)
}

func TestFeedbackBlocksUntilAdvance(t *testing.T) {
	c, gen, _ := newController(t, 30, 5, 9)
	require.True(t, c.StartTest())

	require.True(t, c.SubmitAnswer("5"))
	seq, pending := c.FeedbackSeq()
	require.True(t, pending)

	assert.False(t, c.SubmitAnswer("5"), "input during feedback is ignored")
	assert.False(t, c.Skip(), "skip during feedback is ignored")
	assert.Equal(t, 1, c.State().Total)

	assert.False(t, c.Advance(seq+1))
	assert.Equal(t, 1, gen.calls)

	require.True(t, c.Advance(seq))
	state := c.State()
	assert.Equal(t, FeedbackNone, state.Feedback)
	assert.Equal(t, "", state.Input)
	assert.Equal(t, 9, state.Problem.Answer)
	assert.Equal(t, 2, gen.calls)
	assert.False(t, c.Advance(seq), "advance is applied once")
}

func TestAdvanceAfterCancelIsStale(t *testing.T) {
	c, _, _ := newController(t, 30, 5)
	require.True(t, c.StartTest())
	require.True(t, c.SubmitAnswer("5"))
	seq, _ := c.FeedbackSeq()
	require.True(t, c.Cancel())

	require.True(t, c.StartTest())
	assert.False(t, c.Advance(seq))
	assert.Equal(t, 0, c.State().Total)
}

func TestSkipCountsAttempt(t *testing.T) {
	c, gen, _ := newController(t, 30, 5, 8)
	require.True(t, c.StartTest())
	require.False(t, c.SubmitAnswer("x"))

	require.True(t, c.Skip())
	state := c.State()
	assert.Equal(t, 1, state.Total)
	assert.Equal(t, 0, state.Correct)
	assert.Equal(t, "", state.Input)
	assert.Equal(t, 8, state.Problem.Answer)
	assert.Equal(t, 2, gen.calls)
}

func TestFinishComputesMetricsAndPersistsOnce(t *testing.T) {
	c, _, p := newController(t, 30, 5)
	require.True(t, c.StartTest())
	for i := 0; i < 7; i++ {
		submitAndAdvance(t, c, "5")
	}
	for i := 0; i < 3; i++ {
		submitAndAdvance(t, c, "4")
	}
	id := c.TimerID()
	for i := 0; i < 29; i++ {
		require.True(t, c.Tick(id))
	}
	require.False(t, c.Tick(id))

	summary := c.Summary()
	assert.Equal(t, 7, summary.Correct)
	assert.Equal(t, 10, summary.Total)
	assert.InDelta(t, 70.0, summary.Accuracy, 1e-9)
	assert.InDelta(t, 20.0, summary.PPM, 1e-9)
	assert.False(t, summary.Skipped)

	res := waitResult(t, c)
	require.NoError(t, res.Err)
	assert.Equal(t, "session-1", res.ID)
	assert.Equal(t, summary, res.Summary)
	assert.Equal(t, 1, p.calls())

	assert.False(t, c.Tick(id))
	assert.False(t, c.ForceFinish())
	assert.Nil(t, c.TakePersistResult())
	assert.Equal(t, 1, p.calls())
}

func TestForceFinishMarksSkipped(t *testing.T) {
	c, _, p := newController(t, 60, 5)
	require.True(t, c.StartTest())
	id := c.TimerID()
	for i := 0; i < 30; i++ {
		require.True(t, c.Tick(id))
	}
	submitAndAdvance(t, c, "5")
	require.True(t, c.Skip())

	require.True(t, c.ForceFinish())
	state := c.State()
	assert.Equal(t, StateFinished, state.GameState)
	assert.True(t, state.Skipped)
	assert.False(t, c.TimerActive())

	summary := c.Summary()
	assert.InDelta(t, 50.0, summary.Accuracy, 1e-9)
	assert.InDelta(t, 4.0, summary.PPM, 1e-9)

	res := waitResult(t, c)
	require.NoError(t, res.Err)
	assert.True(t, res.Summary.Skipped)
	assert.Equal(t, 1, p.calls())
}

func TestForceFinishDuringFeedback(t *testing.T) {
	c, _, _ := newController(t, 30, 5)
	require.True(t, c.StartTest())
	require.True(t, c.SubmitAnswer("5"))
	seq, _ := c.FeedbackSeq()

	require.True(t, c.ForceFinish())
	assert.False(t, c.Advance(seq))
	assert.Equal(t, 1, c.State().Correct)
	waitResult(t, c)
}

func TestForceFinishWithoutAnswersDoesNotPersist(t *testing.T) {
	c, _, p := newController(t, 30)
	require.True(t, c.StartTest())
	require.True(t, c.ForceFinish())

	summary := c.Summary()
	assert.Equal(t, 0.0, summary.Accuracy)
	assert.Equal(t, 0.0, summary.PPM)
	assert.Nil(t, c.TakePersistResult())
	assert.Equal(t, 0, p.calls())
}

func TestPersistErrorKeepsResults(t *testing.T) {
	c, _, p := newController(t, 30, 5)
	p.err = errors.New("disk full")
	require.True(t, c.StartTest())
	submitAndAdvance(t, c, "5")
	require.True(t, c.ForceFinish())

	res := waitResult(t, c)
	require.Error(t, res.Err)
	assert.False(t, res.Guest())
	assert.Equal(t, StateFinished, c.State().GameState)
	assert.Equal(t, 1, c.State().Correct)
}

func TestGuestPersistResult(t *testing.T) {
	c, _, p := newController(t, 30, 5)
	p.err = ErrNotAuthenticated
	require.True(t, c.StartTest())
	submitAndAdvance(t, c, "5")
	require.True(t, c.ForceFinish())

	res := waitResult(t, c)
	assert.True(t, res.Guest())
}

func TestNilPersister(t *testing.T) {
	c := New(&fakeGenerator{answers: []int{5}}, nil, model.SessionConfig{Mode: model.ModeAdd, Difficulty: model.DifficultyEasy, Duration: 15})
	require.True(t, c.StartTest())
	submitAndAdvance(t, c, "5")
	require.True(t, c.ForceFinish())
	assert.Nil(t, c.TakePersistResult())
}

func TestCancelDiscardsRun(t *testing.T) {
	c, _, p := newController(t, 30, 5)
	require.True(t, c.StartTest())
	submitAndAdvance(t, c, "5")
	require.True(t, c.Tick(c.TimerID()))

	require.True(t, c.Cancel())
	state := c.State()
	assert.Equal(t, StateIdle, state.GameState)
	assert.Equal(t, 30, state.TimeLeft)
	assert.Equal(t, 0, state.Total)
	assert.Equal(t, 0, state.Correct)
	assert.False(t, c.TimerActive())
	assert.Nil(t, c.TakePersistResult())
	assert.Equal(t, 0, p.calls())
}

func TestRestartFromFinished(t *testing.T) {
	c, _, _ := newController(t, 15, 5)
	require.True(t, c.StartTest())
	submitAndAdvance(t, c, "5")
	require.True(t, c.ForceFinish())
	waitResult(t, c)

	require.True(t, c.Restart())
	state := c.State()
	assert.Equal(t, StateIdle, state.GameState)
	assert.Equal(t, 15, state.TimeLeft)
	assert.Equal(t, 0, state.Total)
	assert.False(t, state.Skipped)
	assert.Equal(t, 0, c.Elapsed())

	require.True(t, c.StartTest())
	assert.Equal(t, StateRunning, c.State().GameState)
}

func TestGameStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "finished", StateFinished.String())
}
