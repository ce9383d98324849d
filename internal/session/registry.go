package session

import (
	"errors"
	"sync"
	"time"

	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/staging"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the per-user state: one listing cache, one staging slot and a
// guard that admits a single generation at a time.
type Session struct {
	ID        string
	CreatedAt time.Time
	Cache     Cache

	generating sync.Mutex
	mu         sync.Mutex
	epoch      uint64 // bumped by Reset
	run        *staging.Run
}

// Generation is the reservation held by one running generation.
type Generation struct {
	session *Session
	epoch   uint64
}

// TryBeginGeneration reserves the session for one generation; ok is false
// when another generation is running. Callers must Release the reservation.
func (s *Session) TryBeginGeneration() (gen *Generation, ok bool) {
	if !s.generating.TryLock() {
		return nil, false
	}
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	return &Generation{session: s, epoch: epoch}, true
}

// Commit stores entry in the cache unless the session was reset after the
// generation began. It reports whether the entry was stored.
func (g *Generation) Commit(entry model.ListingEntry) bool {
	s := g.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != g.epoch {
		return false
	}
	s.Cache.Put(entry)
	return true
}

func (g *Generation) Release() {
	g.session.generating.Unlock()
}

// Run returns the latest staging run, if any.
func (s *Session) Run() *staging.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// SetRun replaces the staging slot. The previous run is discarded but its
// in-flight tasks are left to finish on their own.
func (s *Session) SetRun(run *staging.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
}

// Reset clears the listing cache and the staging slot. Generations already
// running when Reset is called can no longer commit.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.Cache.Clear()
	s.run = nil
}

// Registry keeps sessions in memory, keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newID    func() string
}

func NewRegistry(newID func() string) *Registry {
	return &Registry{sessions: make(map[string]*Session), newID: newID}
}

func (r *Registry) Create() *Session {
	s := &Session{ID: r.newID(), CreatedAt: time.Now().UTC()}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetOrCreate returns the session for id, creating it under that id when absent.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id, CreatedAt: time.Now().UTC()}
	r.sessions[id] = s
	return s
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
