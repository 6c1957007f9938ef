package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tuimath.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// withClock makes each insert one minute later than the previous one.
func withClock(st *Store, start time.Time) {
	next := start
	st.now = func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func summary(mode model.Mode, diff model.Difficulty, correct, total int, ppm float64) model.SessionSummary {
	acc := 0.0
	if total > 0 {
		acc = float64(correct) / float64(total) * 100
	}
	return model.SessionSummary{
		Mode:       mode,
		Difficulty: diff,
		Duration:   30,
		Correct:    correct,
		Total:      total,
		Accuracy:   acc,
		PPM:        ppm,
	}
}

func TestInsertAndListRoundTrip(t *testing.T) {
	st := openTestStore(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	withClock(st, start)
	ctx := context.Background()

	in := summary(model.ModeMultiply, model.DifficultyHard, 7, 10, 20)
	in.Skipped = true
	id, err := st.InsertSession(ctx, "ada", in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	records, err := st.ListSessions(ctx, model.HistoryFilter{Profile: "ada"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.ID != id || got.Profile != "ada" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if !got.CreatedAt.Equal(start) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, start)
	}
	if got.SessionSummary != in {
		t.Fatalf("summary = %+v, want %+v", got.SessionSummary, in)
	}
}

func TestListSessionsFiltersAndOrder(t *testing.T) {
	st := openTestStore(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	withClock(st, start)
	ctx := context.Background()

	inserts := []struct {
		profile string
		sum     model.SessionSummary
	}{
		{"ada", summary(model.ModeAdd, model.DifficultyEasy, 5, 10, 10)},
		{"ada", summary(model.ModeSubtract, model.DifficultyEasy, 8, 10, 12)},
		{"bob", summary(model.ModeAdd, model.DifficultyEasy, 9, 10, 30)},
		{"ada", summary(model.ModeAdd, model.DifficultyMedium, 6, 10, 14)},
		{"ada", summary(model.ModeAdd, model.DifficultyEasy, 10, 10, 16)},
	}
	for _, in := range inserts {
		if _, err := st.InsertSession(ctx, in.profile, in.sum); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := st.ListSessions(ctx, model.HistoryFilter{Profile: "ada"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 ada sessions, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("sessions not newest first: %v then %v", all[i-1].CreatedAt, all[i].CreatedAt)
		}
	}
	if all[0].PPM != 16 {
		t.Fatalf("expected newest session first, got ppm %.1f", all[0].PPM)
	}

	addEasy, err := st.ListSessions(ctx, model.HistoryFilter{Profile: "ada", Mode: model.ModeAdd, Difficulty: model.DifficultyEasy})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(addEasy) != 2 {
		t.Fatalf("expected 2 add/easy sessions, got %d", len(addEasy))
	}

	last, err := st.ListSessions(ctx, model.HistoryFilter{Profile: "ada", Last: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(last) != 2 || last[0].PPM != 16 || last[1].PPM != 14 {
		t.Fatalf("unexpected last sessions: %+v", last)
	}

	since := start.Add(3 * time.Minute)
	recent, err := st.ListSessions(ctx, model.HistoryFilter{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 sessions since %v, got %d", since, len(recent))
	}

	everyone, err := st.ListSessions(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(everyone) != 5 {
		t.Fatalf("expected 5 sessions, got %d", len(everyone))
	}
}

func TestLoadStats(t *testing.T) {
	st := openTestStore(t)
	withClock(st, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, sum := range []model.SessionSummary{
		summary(model.ModeAdd, model.DifficultyEasy, 1, 3, 10),
		summary(model.ModeAdd, model.DifficultyEasy, 2, 3, 11),
		summary(model.ModeAdd, model.DifficultyEasy, 3, 3, 15),
	} {
		if _, err := st.InsertSession(ctx, "ada", sum); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := st.LoadStats(ctx, model.HistoryFilter{Profile: "ada"})
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if got.TotalSessions != 3 {
		t.Fatalf("total sessions = %d", got.TotalSessions)
	}
	if got.AverageAccuracy != 66.7 {
		t.Fatalf("average accuracy = %.2f, want 66.7", got.AverageAccuracy)
	}
	if got.AveragePPM != 12 {
		t.Fatalf("average ppm = %.2f, want 12", got.AveragePPM)
	}

	lastTwo, err := st.LoadStats(ctx, model.HistoryFilter{Profile: "ada", Last: 2})
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if lastTwo.TotalSessions != 2 || lastTwo.AveragePPM != 13 {
		t.Fatalf("unexpected last-two stats: %+v", lastTwo)
	}

	none, err := st.LoadStats(ctx, model.HistoryFilter{Profile: "nobody"})
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if none != (model.UserStats{}) {
		t.Fatalf("expected zero stats, got %+v", none)
	}
}

func TestProfiles(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, p := range []string{"bob", "ada", "bob"} {
		if _, err := st.InsertSession(ctx, p, summary(model.ModeAdd, model.DifficultyEasy, 1, 1, 2)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	profiles, err := st.Profiles(ctx)
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 2 || profiles[0] != "ada" || profiles[1] != "bob" {
		t.Fatalf("unexpected profiles: %v", profiles)
	}
}

func TestSaverPersistsUnderProfile(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	saver := NewSaver(st, "ada")

	id, err := saver.PersistSession(ctx, summary(model.ModeAdd, model.DifficultyEasy, 4, 5, 10))
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	records, err := st.ListSessions(ctx, model.HistoryFilter{Profile: "ada"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != id {
		t.Fatalf("expected persisted session %s, got %+v", id, records)
	}
}

func TestSaverGuestIsNotAuthenticated(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := NewSaver(st, "").PersistSession(ctx, summary(model.ModeAdd, model.DifficultyEasy, 4, 5, 10))
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	records, err := st.ListSessions(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("guest sessions must not be stored, got %d", len(records))
	}
}
