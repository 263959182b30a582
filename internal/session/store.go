package session

import (
	"context"

	"github.com/taibuivan/fichas/internal/platform/apperr"
)

// ErrStale is returned when a state is saved over a newer one.
var ErrStale = apperr.Conflict("The session was changed by a newer request")

// Repository persists session states.
type Repository interface {
	// Create stores a new session. It fails if the id is taken.
	Create(ctx context.Context, state State) error

	// Get loads a session, or NOT_FOUND.
	Get(ctx context.Context, id string) (State, error)

	// Save replaces a session only if the stored version is still
	// expectedVersion; otherwise it returns [ErrStale].
	Save(ctx context.Context, state State, expectedVersion int64) error

	// Delete removes a session, or NOT_FOUND.
	Delete(ctx context.Context, id string) error
}
