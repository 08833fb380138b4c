package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/DachengChen/paiAnalyst/chat"
)

type registry struct {
	mu       sync.RWMutex
	factory  Factory
	sessions map[string]*chat.Controller
}

func newRegistry(factory Factory) *registry {
	return &registry{factory: factory, sessions: make(map[string]*chat.Controller)}
}

func (r *registry) create() string {
	id := uuid.NewString()
	c := r.factory()
	r.mu.Lock()
	r.sessions[id] = c
	r.mu.Unlock()
	return id
}

func (r *registry) get(id string) (*chat.Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	return c, ok
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
