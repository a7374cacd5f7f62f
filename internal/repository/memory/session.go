package memory

import (
	"context"
	"sync"
	"time"

	"github.com/RMahshie/invols/internal/repository"
	"github.com/rs/zerolog/log"
)

// SessionRepository keeps sessions in process memory
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*repository.Session
	ttl      time.Duration
}

// NewSessionRepository creates an in-memory repository. Sessions idle for
// longer than ttl are evicted when a new one is created; zero keeps them.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*repository.Session),
		ttl:      ttl,
	}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *repository.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ttl > 0 {
		now := time.Now()
		for id, s := range r.sessions {
			if s.IdleSince(now) > r.ttl {
				delete(r.sessions, id)
				log.Info().Str("sessionID", id).Msg("Evicted idle session")
			}
		}
	}
	r.sessions[session.ID] = session
	return nil
}

// Get returns a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*repository.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of stored sessions
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
