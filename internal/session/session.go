package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Turn is one (query, answer) exchange in a tutoring conversation.
type Turn struct {
	Query  string
	Answer string
}

// History is an append-only sequence of turns owned by exactly one session.
// Turns are appended in request order for that session; sessions never share
// a History.
type History struct {
	mu    sync.Mutex
	turns []Turn
}

func (h *History) Append(query, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, Turn{Query: query, Answer: answer})
}

// Turns returns a snapshot of the conversation in chronological order.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

type entry struct {
	history  *History
	lastSeen time.Time
}

// Store keys conversation histories by session ID and expires sessions that
// have been idle longer than the TTL. The core never inspects session IDs;
// callers own the lifecycle.
type Store struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, sessions: make(map[string]*entry)}
}

// Get returns the history for a session, creating it on first use and
// refreshing its idle timer.
func (s *Store) Get(id string) *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{history: &History{}}
		s.sessions[id] = e
	}
	e.lastSeen = time.Now()
	return e.history
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle past the TTL and reports how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions on the given interval until the context is
// cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(time.Now()); n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}
