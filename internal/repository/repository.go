package repository

import (
	"context"
	"time"

	"github.com/zahek/todo-platform/internal/domain"
)

// CredentialStore keeps refresh-token liveness. An entry exists only
// between issue and revoke (or TTL expiry). Errors are infrastructure
// failures; an absent entry is reported through found, not an error.
type CredentialStore interface {
	// Put records token as live for userID, overwriting any entry.
	Put(ctx context.Context, token, userID string, ttl time.Duration) error

	// Get returns the owning user of a live token.
	Get(ctx context.Context, token string) (userID string, found bool, err error)

	// Delete removes the entry; deleting an absent entry is not an error.
	Delete(ctx context.Context, token string) error

	// Ping checks connectivity for readiness probes.
	Ping(ctx context.Context) error
}

// UserRepository is the user directory.
type UserRepository interface {
	// Create inserts a new user. A duplicate email is ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID; unknown IDs are ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email; unknown addresses
	// are ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error

	// ListByOwner returns one page of the owner's projects, newest first,
	// with the total count.
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Project, int, error)
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error

	// List returns one page of tasks matching filter, newest first, with
	// the total count.
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, int, error)
}
