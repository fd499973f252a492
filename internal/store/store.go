package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/spigell/hh-interviewer/internal/interview"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrBusy     = errors.New("session has a pass in flight")
)

type entry struct {
	session *interview.Session
	busy    bool
}

// Store keeps interview sessions in memory. It owns the canonical copy of
// each session: callers only ever see clones, and changes land through Update,
// which commits the engine's result atomically. At most one update per
// session id may be in flight, because an orchestration pass is not
// reentrant-safe mid-turn.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// New creates an empty session store.
func New() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Create registers a new session for the provided document text and returns a
// snapshot of it.
func (s *Store) Create(resumeText, jobDescriptionText string) (*interview.Session, error) {
	session, err := interview.NewSession(uuid.NewString(), resumeText, jobDescriptionText)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &entry{session: session}

	return session.Clone(), nil
}

// Get returns a snapshot of the session with the given id.
func (s *Store) Get(id string) (*interview.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	return e.session.Clone(), nil
}

// Update runs fn against a snapshot of the stored session and commits the
// returned session when fn succeeds. When fn fails nothing is committed. A
// second concurrent update for the same id is rejected with ErrBusy rather
// than interleaved.
func (s *Store) Update(id string, fn func(*interview.Session) (*interview.Session, error)) (*interview.Session, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if e.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	e.busy = true
	snapshot := e.session.Clone()
	s.mu.Unlock()

	updated, err := fn(snapshot)

	s.mu.Lock()
	e.busy = false
	if err == nil && updated != nil {
		e.session = updated
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return updated.Clone(), nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
