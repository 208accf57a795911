package auth

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SessionRef points a session at its subject.
type SessionRef struct {
	Role      Role
	SubjectID string
}

// SessionRegistry maps opaque server-generated identifiers to subject
// references for the cookie authentication strategy. Identifiers are
// drawn from the UUID space so they cannot be guessed or collide under
// realistic concurrency.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]SessionRef
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]SessionRef)}
}

// Create allocates a fresh session identifier for the subject.
func (r *SessionRegistry) Create(ref SessionRef) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = ref
	r.mu.Unlock()
	return id
}

// Resolve returns the subject reference for a session identifier.
func (r *SessionRegistry) Resolve(id string) (SessionRef, error) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.sessions[id]
	if !ok {
		return SessionRef{}, ErrInvalidSession
	}
	return ref, nil
}

// Remove deletes a session. Unknown identifiers fail with
// ErrInvalidSession so the logout path can report them.
func (r *SessionRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrInvalidSession
	}
	delete(r.sessions, id)
	return nil
}

// Reset clears the registry. Intended for tests.
func (r *SessionRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]SessionRef)
}
