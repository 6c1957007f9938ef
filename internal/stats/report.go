package stats

import (
	"context"

	"github.com/verte-zerg/tuimath/internal/model"
)

// HistoryLoader reads stored sessions.
type HistoryLoader interface {
	ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error)
	LoadStats(ctx context.Context, filter model.HistoryFilter) (model.UserStats, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions  []model.SessionRecord
	Stats     model.UserStats
	Breakdown []BreakdownRow
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st HistoryLoader, filter model.HistoryFilter) (Report, error) {
	sessions, err := st.ListSessions(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	userStats, err := st.LoadStats(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions:  sessions,
		Stats:     userStats,
		Breakdown: Breakdown(sessions),
	}, nil
}
