package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/mnemoflash/internal/logger"
)

// Store keeps creation sessions in memory. Sessions belong to the profile
// that created them and expire after a period without activity.
type Store struct {
	engine *Engine
	ttl    time.Duration
	now    func() time.Time
	newID  func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(engine *Engine, ttl time.Duration) *Store {
	return &Store{
		engine:   engine,
		ttl:      ttl,
		now:      engine.now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session for profileID.
func (st *Store) Create(profileID int64, learning, native string) *Session {
	s := st.engine.NewSession(st.newID(), profileID, learning, native)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	logger.Default().WithPrefix("session_store").Debug("session created: id=%s profile_id=%d", s.ID, profileID)
	return s
}

// Get returns the session with id if it belongs to profileID.
func (st *Store) Get(id string, profileID int64) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok || s.ProfileID != profileID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes the session. Results of its in-flight calls are discarded.
func (st *Store) Delete(id string, profileID int64) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok || s.ProfileID != profileID {
		return ErrSessionNotFound
	}
	s.Reset()
	delete(st.sessions, id)
	return nil
}

// List returns the sessions owned by profileID.
func (st *Store) List(profileID int64) []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []*Session
	for _, s := range st.sessions {
		if s.ProfileID == profileID {
			out = append(out, s)
		}
	}
	return out
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep evicts idle sessions and returns how many were removed. Sessions
// with a call in flight are kept.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		last, busy := s.idleSince()
		if busy || last.After(cutoff) {
			continue
		}
		delete(st.sessions, id)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	log := logger.FromContext(ctx).WithPrefix("session_store")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				log.Info("evicted %d idle session(s), %d remaining", n, st.Len())
			}
		}
	}
}
