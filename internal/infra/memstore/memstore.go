// Package memstore keeps users, events and points history in memory.
// It backs tests and the `--memory` serve mode; nothing survives a restart.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// Store implements domain.UserRepository, domain.UserLister,
// domain.EventLog and domain.PointsLedger.
type Store struct {
	mu      sync.RWMutex
	users   map[string]domain.UserAggregate
	order   []string
	events  []domain.Event
	entries []domain.PointsEntry
	nextID  int64
}

// New returns an empty store.
func New() *Store {
	return &Store{users: make(map[string]domain.UserAggregate)}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func (s *Store) Load(_ context.Context, userID string) (domain.UserAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.UserAggregate{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return u.Clone(), nil
}

func (s *Store) Save(_ context.Context, user domain.UserAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.UserID]; !exists {
		s.order = append(s.order, user.UserID)
	}
	s.users[user.UserID] = user.Clone()
	return nil
}

// ListUsers returns user ids in onboarding order.
func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order), nil
}

// ─── Events ─────────────────────────────────────────────────────────────────

func (s *Store) Publish(_ context.Context, ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Pending returns events not yet shown, oldest first.
func (s *Store) Pending(_ context.Context, userID string, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Event
	for _, ev := range s.events {
		if ev.UserID != userID || ev.Shown {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkShown(_ context.Context, userID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == eventID && s.events[i].UserID == userID {
			s.events[i].Shown = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrEventNotFound, eventID)
}

// Events returns every published event, for assertions.
func (s *Store) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// ─── Points History ─────────────────────────────────────────────────────────

func (s *Store) Record(_ context.Context, entry domain.PointsEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, entry)
	return nil
}

// History returns entries for userID, newest first.
func (s *Store) History(_ context.Context, userID string, limit int) ([]domain.PointsEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PointsEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID != userID {
			continue
		}
		out = append(out, s.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
