// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/stats"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for session data.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			created_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			duration INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			ppm REAL NOT NULL,
			skipped INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_profile_created_at ON sessions(profile, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session for profile and returns its ID.
// Sessions are immutable once stored.
func (s *Store) InsertSession(ctx context.Context, profile string, summary model.SessionSummary) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, profile, created_at, mode, difficulty, duration, correct, total, accuracy, ppm, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		profile,
		s.now().UTC().Format(timeLayout),
		string(summary.Mode),
		string(summary.Difficulty),
		summary.Duration,
		summary.Correct,
		summary.Total,
		summary.Accuracy,
		summary.PPM,
		boolToInt(summary.Skipped),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListSessions returns sessions matching filter, newest first.
func (s *Store) ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error) {
	where, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT id, profile, created_at, mode, difficulty, duration, correct, total, accuracy, ppm, skipped
		FROM sessions
		WHERE %s
		ORDER BY created_at DESC, id`, where)
	if filter.Last > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var createdAt, mode, difficulty string
		var skipped int
		if err := rows.Scan(&rec.ID, &rec.Profile, &createdAt, &mode, &difficulty, &rec.Duration,
			&rec.Correct, &rec.Total, &rec.Accuracy, &rec.PPM, &skipped); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = parsed
		rec.Mode = model.Mode(mode)
		rec.Difficulty = model.Difficulty(difficulty)
		rec.Skipped = skipped != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadStats averages accuracy and PPM over the sessions matching filter.
func (s *Store) LoadStats(ctx context.Context, filter model.HistoryFilter) (model.UserStats, error) {
	where, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(AVG(accuracy), 0), COALESCE(AVG(ppm), 0)
		FROM (
			SELECT accuracy, ppm FROM sessions
			WHERE %s
			ORDER BY created_at DESC
			LIMIT ?
		)`, where)
	limit := -1
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)

	var out model.UserStats
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&out.TotalSessions, &out.AverageAccuracy, &out.AveragePPM); err != nil {
		return model.UserStats{}, err
	}
	out.AverageAccuracy = stats.Round1(out.AverageAccuracy)
	out.AveragePPM = stats.Round1(out.AveragePPM)
	return out, nil
}

// Profiles lists the profiles that have stored sessions.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT profile FROM sessions ORDER BY profile`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func filterClauses(filter model.HistoryFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Profile != "" {
		clauses = append(clauses, "profile = ?")
		args = append(args, filter.Profile)
	}
	if filter.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(filter.Mode))
	}
	if filter.Difficulty != "" {
		clauses = append(clauses, "difficulty = ?")
		args = append(args, string(filter.Difficulty))
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
