// Package notify defines user-facing notification levels and a bounded
// in-memory store the TUI renders as a status line.
package notify

import (
	"sync"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Store keeps the most recent notifications, oldest dropped first.
type Store struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

// NewStore creates a store holding at most max notifications.
func NewStore(max int) *Store {
	if max <= 0 {
		max = 50
	}
	return &Store{max: max}
}

// Add appends a notification, evicting the oldest when full.
func (s *Store) Add(level Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, Notification{
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if len(s.items) > s.max {
		s.items = s.items[len(s.items)-s.max:]
	}
}

// Latest returns the most recent notification and whether one exists.
func (s *Store) Latest() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return Notification{}, false
	}
	return s.items[len(s.items)-1], true
}

// List returns a copy of all stored notifications, oldest first.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Clear removes all stored notifications.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
