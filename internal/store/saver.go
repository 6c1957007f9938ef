package store

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
)

// Saver persists finished sessions under a profile.
type Saver struct {
	store   *Store
	profile string
}

// NewSaver returns a Saver for profile. An empty profile means guest mode.
func NewSaver(st *Store, profile string) *Saver {
	return &Saver{store: st, profile: profile}
}

// Profile returns the profile sessions are saved under.
func (s *Saver) Profile() string {
	return s.profile
}

// PersistSession stores summary and returns its ID.
func (s *Saver) PersistSession(ctx context.Context, summary model.SessionSummary) (string, error) {
	if s.profile == "" {
		return "", session.ErrNotAuthenticated
	}
	if s.store == nil {
		return "", fmt.Errorf("save session: store not open")
	}
	id, err := s.store.InsertSession(ctx, s.profile, summary)
	if err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}
