package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
)

// TaskStore defines persistence for tasks. Every lookup after creation is
// scoped by both task ID and owner ID; a task owned by another user is
// reported as ErrTaskNotFound, exactly like a missing one.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// ListByOwner returns the owner's tasks, newest first. Returns an empty
	// slice when there are none.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// Update applies the patch to the task matching (id, ownerID) and returns
	// the stored result. updatedAt is written even for an empty patch.
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error)

	// Delete removes the task matching (id, ownerID) and returns it.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
}
