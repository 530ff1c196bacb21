// internal/store/memory.go
//
// In-memory registry of live games for the HTTP surface.
//
// Characteristics:
//   - Sessions keyed by a random UUID.
//   - The map is guarded by an RWMutex; each Session carries its own mutex
//     so a controller only ever sees one guess at a time.
//   - State is lost when the process restarts; finished games are
//     persisted elsewhere and dropped from here by their owner.
//   - Sweep removes sessions nobody finished.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordlebot/internal/game"
)

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("store: session not found")

// Session is one live game.
type Session struct {
	ID        string
	PlayerID  string // empty for guests
	StartedAt time.Time

	mu   sync.Mutex
	ctrl *game.Controller
}

// NewSession wraps ctrl in a session with a fresh ID.
func NewSession(ctrl *game.Controller, playerID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		StartedAt: time.Now().UTC(),
		ctrl:      ctrl,
	}
}

// Do runs fn with exclusive access to the controller.
func (s *Session) Do(fn func(*game.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
}

// Store defines the registry interface.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error
	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete drops a session; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error
	// Len reports the number of live sessions.
	Len() int
	// Sweep drops sessions started before cutoff and reports how many.
	Sweep(ctx context.Context, cutoff time.Time) int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.StartedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
