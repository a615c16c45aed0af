package analysis

import (
	"sync"

	"github.com/bryanwahyu/leafsense/internal/application"
	faultsdomain "github.com/bryanwahyu/leafsense/internal/domain/faults"
	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// Registry hands out one Session per (tenant, plant), created lazily and
// reused across attempts. Together with the Session reject-while-streaming
// policy this guarantees at most one in-flight analysis per plant, so
// appends to the same profile never race.
type Registry struct {
	engine *Engine
	repo   plants.Repository
	faults faultsdomain.Repository
	clock  application.Clock

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(engine *Engine, repo plants.Repository, faults faultsdomain.Repository, clock application.Clock) *Registry {
	return &Registry{
		engine:   engine,
		repo:     repo,
		faults:   faults,
		clock:    clock,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for the given plant, creating it on first use.
func (r *Registry) Session(tenant string, id plants.ProfileID) *Session {
	key := tenant + "/" + string(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := NewSession(r.engine, r.repo, r.faults, r.clock)
	r.sessions[key] = s
	return s
}

// Peek returns the session snapshot without creating a session; the second
// return reports whether one exists.
func (r *Registry) Peek(tenant string, id plants.ProfileID) (Snapshot, bool) {
	key := tenant + "/" + string(id)

	r.mu.Lock()
	s, ok := r.sessions[key]
	r.mu.Unlock()
	if !ok {
		return Snapshot{State: StateIdle}, false
	}
	return s.Snapshot(), true
}
