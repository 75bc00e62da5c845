package chat

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
)

// Session is one user's chat state. It is passed explicitly into HandleQuery.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.RWMutex
	businessRole string
	topic        string
	lastActive   time.Time

	conversation *Conversation
}

// NewSession creates a session with a fresh ID when id is empty
func NewSession(id string, historyTurns int) *Session {
	if id == "" {
		id = common.NewSessionID()
	}
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		lastActive:   now,
		conversation: NewConversation(historyTurns),
	}
}

// Conversation returns the session's message window
func (s *Session) Conversation() *Conversation {
	return s.conversation
}

// BusinessRole returns the role hint passed to the composer
func (s *Session) BusinessRole() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.businessRole
}

// SetBusinessRole sets the role hint, e.g. "Business Analyst"
func (s *Session) SetBusinessRole(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businessRole = role
}

// Topic returns the learning module the user is working through, if any
func (s *Session) Topic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topic
}

// SetTopic sets the learning module
func (s *Session) SetTopic(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = topic
}

// Touch records activity
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// LastActive returns the time of the last recorded activity
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// SessionStore keeps sessions for the HTTP surface, keyed by ID.
// Sessions idle for longer than the idle timeout are dropped by Prune.
type SessionStore struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	historyTurns int
	idleTimeout  time.Duration
	logger       arbor.ILogger
}

// NewSessionStore creates a store. idleTimeout <= 0 keeps sessions forever.
func NewSessionStore(historyTurns int, idleTimeout time.Duration, logger arbor.ILogger) *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]*Session),
		historyTurns: historyTurns,
		idleTimeout:  idleTimeout,
		logger:       logger,
	}
}

// GetOrCreate returns the session for id, creating it when unknown.
// An empty id always creates a new session.
func (s *SessionStore) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if session, ok := s.sessions[id]; ok {
			session.Touch()
			return session
		}
	}

	session := NewSession(id, s.historyTurns)
	s.sessions[session.ID] = session
	return session
}

// Get returns an existing session
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Delete removes a session
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops sessions idle since before now minus the idle timeout and returns how many
func (s *SessionStore) Prune(now time.Time) int {
	if s.idleTimeout <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	cutoff := now.Add(-s.idleTimeout)
	for id, session := range s.sessions {
		if session.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug().
			Int("removed", removed).
			Int("remaining", len(s.sessions)).
			Msg("Pruned idle chat sessions")
	}
	return removed
}
