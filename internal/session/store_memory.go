package session

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/fichas/internal/platform/apperr"
)

// MemoryRepository keeps sessions in process memory. Used when no Redis is configured.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// NewMemoryRepository creates a repository whose sessions expire after ttl
// without a write. A ttl of zero keeps them forever.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (repository *MemoryRepository) Create(ctx context.Context, state State) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.lookup(state.ID); ok {
		return apperr.Conflict("Session already exists")
	}
	repository.put(state)
	return nil
}

func (repository *MemoryRepository) Get(ctx context.Context, id string) (State, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	state, ok := repository.lookup(id)
	if !ok {
		return State{}, apperr.NotFound("Session")
	}
	return state, nil
}

func (repository *MemoryRepository) Save(ctx context.Context, state State, expectedVersion int64) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	current, ok := repository.lookup(state.ID)
	if !ok {
		return apperr.NotFound("Session")
	}
	if current.Version != expectedVersion {
		return ErrStale
	}
	repository.put(state)
	return nil
}

func (repository *MemoryRepository) Delete(ctx context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.lookup(id); !ok {
		return apperr.NotFound("Session")
	}
	delete(repository.sessions, id)
	return nil
}

// lookup returns a live session and drops it if it has expired. Callers hold mu.
func (repository *MemoryRepository) lookup(id string) (State, bool) {
	entry, ok := repository.sessions[id]
	if !ok {
		return State{}, false
	}
	if !entry.expiresAt.IsZero() && repository.now().After(entry.expiresAt) {
		delete(repository.sessions, id)
		return State{}, false
	}
	return entry.state, true
}

func (repository *MemoryRepository) put(state State) {
	entry := memoryEntry{state: state}
	if repository.ttl > 0 {
		entry.expiresAt = repository.now().Add(repository.ttl)
	}
	repository.sessions[state.ID] = entry
}
