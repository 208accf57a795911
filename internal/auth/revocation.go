package auth

import "sync"

// RevocationList tracks bearer tokens that must no longer be honored,
// independent of signature validity. Matching is on the literal token
// string, so two differently-encoded tokens for the same subject are
// tracked independently. Entries are never evicted; the set grows for
// the process lifetime.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]struct{}
}

// NewRevocationList returns an empty list.
func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: make(map[string]struct{})}
}

// Revoke adds the token to the list. Revoking a token that is already
// on the list fails with ErrAlreadyRevoked so callers can detect
// repeat logout attempts.
func (l *RevocationList) Revoke(token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.revoked[token]; ok {
		return ErrAlreadyRevoked
	}
	l.revoked[token] = struct{}{}
	return nil
}

// IsRevoked reports whether the exact token string was revoked.
func (l *RevocationList) IsRevoked(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.revoked[token]
	return ok
}

// Reset clears the list. Intended for tests.
func (l *RevocationList) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked = make(map[string]struct{})
}
