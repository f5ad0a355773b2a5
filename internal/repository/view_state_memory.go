package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"optionstracker/internal/domain"
)

// MemoryViewStateRepository keeps view states in process memory. It is the
// default store when neither Postgres nor Redis is configured.
type MemoryViewStateRepository struct {
	mu     sync.RWMutex
	states map[uuid.UUID]*domain.ViewState
}

// NewMemoryViewStateRepository creates an empty in-memory store
func NewMemoryViewStateRepository() *MemoryViewStateRepository {
	return &MemoryViewStateRepository{states: make(map[uuid.UUID]*domain.ViewState)}
}

// Get returns a copy of the stored state
func (r *MemoryViewStateRepository) Get(_ context.Context, sessionID uuid.UUID) (*domain.ViewState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.states[sessionID]
	if !ok {
		return nil, domain.ErrViewStateNotFound
	}
	return st.Clone(), nil
}

// Save stores a copy of state
func (r *MemoryViewStateRepository) Save(_ context.Context, state *domain.ViewState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.SessionID] = state.Clone()
	return nil
}

// DeleteIdle drops states last updated before the cutoff
func (r *MemoryViewStateRepository) DeleteIdle(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, st := range r.states {
		if st.UpdatedAt.Before(before) {
			delete(r.states, id)
			n++
		}
	}
	return n, nil
}

// Ping always succeeds
func (r *MemoryViewStateRepository) Ping(context.Context) error {
	return nil
}

// Len reports how many sessions are stored
func (r *MemoryViewStateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}
