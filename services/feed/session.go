package feed

import (
	"sync"
	"time"
)

// FeedSession is the per-user pagination state: the dedup ledger of shown
// provider IDs, the current search radius, and the exhaustion flag. It is
// owned by the feed service and protected by a single-writer discipline; it
// is never ambient global state, so concurrent users cannot interfere and
// tests can construct isolated sessions.
type FeedSession struct {
	mu            sync.Mutex
	shown         map[string]struct{}
	radiusMiles   float64
	exhausted     bool
	inFlight      bool
	lastCompleted time.Time
}

// NewFeedSession creates a session starting at the given radius.
func NewFeedSession(radiusMiles float64) *FeedSession {
	return &FeedSession{
		shown:       make(map[string]struct{}),
		radiusMiles: radiusMiles,
	}
}

// TryBegin claims the session for one sourcing operation. It fails when a
// sourcing operation is already in flight or the previous one completed
// within the cooldown window; callers treat that as a no-op.
func (s *FeedSession) TryBegin(cooldown time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	if !s.lastCompleted.IsZero() && time.Since(s.lastCompleted) < cooldown {
		return false
	}
	s.inFlight = true
	return true
}

// End releases the session and stamps the cooldown window.
func (s *FeedSession) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.lastCompleted = time.Now()
}

// MarkShown adds provider IDs to the dedup ledger.
func (s *FeedSession) MarkShown(providerIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range providerIDs {
		s.shown[id] = struct{}{}
	}
}

// ShownIDs returns a snapshot of the dedup ledger.
func (s *FeedSession) ShownIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.shown))
	for id := range s.shown {
		ids = append(ids, id)
	}
	return ids
}

// HasShown reports whether the provider ID was already served.
func (s *FeedSession) HasShown(providerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.shown[providerID]
	return ok
}

// ShownCount returns the ledger size.
func (s *FeedSession) ShownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shown)
}

// Radius returns the current search radius, read fresh at the start of each
// operation rather than captured by value.
func (s *FeedSession) Radius() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.radiusMiles
}

// SetRadius updates the search radius.
func (s *FeedSession) SetRadius(miles float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.radiusMiles = miles
}

// Exhausted reports whether the feed can yield no further unique candidates
// under current constraints.
func (s *FeedSession) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

// SetExhausted updates the exhaustion flag.
func (s *FeedSession) SetExhausted(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exhausted = v
}

// Reset clears the ledger, radius and exhaustion for an explicit refresh.
func (s *FeedSession) Reset(radiusMiles float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = make(map[string]struct{})
	s.radiusMiles = radiusMiles
	s.exhausted = false
}

// SessionStore holds one FeedSession per user. Sessions for different users
// are fully independent.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*FeedSession
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*FeedSession)}
}

// Get returns the user's session, creating it at the given radius.
func (st *SessionStore) Get(userID string, defaultRadius float64) *FeedSession {
	st.mu.RLock()
	session, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		return session
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if session, ok := st.sessions[userID]; ok {
		return session
	}
	session = NewFeedSession(defaultRadius)
	st.sessions[userID] = session
	return session
}

// Drop removes a user's session.
func (st *SessionStore) Drop(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
