package game

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
	"sync"
	"time"

	"figtrace/internal/figures"
	"figtrace/pkg/realtime"
)

// SSE event names published for a game.
const (
	EventRound  = "round"
	EventScores = "scores"
	EventAngle  = "angle"
	EventLine   = "line"
)

// Store holds games and delegates to realtime.RoomStore for persistence and broadcast.
type Store struct {
	r        *realtime.RoomStore[*Game]
	settings Settings

	mu      sync.RWMutex
	library *figures.Library
}

// NewStore creates an in-memory game store whose games play figures from lib.
func NewStore(lib *figures.Library, s Settings) *Store {
	return &Store{r: realtime.NewRoomStore[*Game](), settings: s, library: lib}
}

// Library returns the library new games are created with.
func (s *Store) Library() *figures.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.library
}

// SetLibrary swaps the library for games created from now on. Running games
// keep the figures they started with.
func (s *Store) SetLibrary(lib *figures.Library) {
	s.mu.Lock()
	s.library = lib
	s.mu.Unlock()
}

// CreateGame initializes a game and registers its broadcaster.
func (s *Store) CreateGame() *Game {
	g := NewGame(s.Library(), s.settings)
	s.r.Create(g.ID, g)
	return g
}

// GetGame returns a game by ID if it exists.
func (s *Store) GetGame(id string) (*Game, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, ok
}

// Len returns the number of live games.
func (s *Store) Len() int { return s.r.Len() }

// Broadcaster returns the SSE broadcaster for a game.
func (s *Store) Broadcaster(id string) *realtime.Broadcaster {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a game update.
func (s *Store) Publish(id string, events ...realtime.Event) {
	s.r.Publish(id, events...)
}

// EnsureRoundLoop starts the timing loop for a game if not already running.
func (s *Store) EnsureRoundLoop(id string) {
	getState := func() *Game {
		room, ok := s.r.Get(id)
		if !ok {
			return nil
		}
		return room.State
	}
	tick := func(state *Game, now time.Time) (time.Time, []realtime.Event, bool) {
		if state == nil {
			return time.Time{}, nil, true
		}
		advanced := state.AdvanceIfNeeded(now)
		var events []realtime.Event
		if advanced {
			events = []realtime.Event{{Name: EventRound}, {Name: EventScores}}
		}
		next, ok := state.NextTimer(now)
		if !ok {
			return time.Time{}, events, true
		}
		return next, events, false
	}
	s.r.RunLoop(id, getState, tick)
}

// WakeRoundLoop unblocks the round loop so it recomputes (e.g. after a won round).
func (s *Store) WakeRoundLoop(id string) {
	s.r.Wake(id)
}

// Sweep drops games idle for longer than idle that nobody is watching.
func (s *Store) Sweep(idle time.Duration) int {
	return s.r.Sweep(idle)
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
