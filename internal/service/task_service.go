package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/events"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// TaskService provides owner-scoped task operations. Every successful
// mutation emits an event to the owner's channel.
type TaskService interface {
	// List returns the owner's tasks, newest first. Never nil.
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// Create adds an incomplete task. Returns domain.ErrValidation when the
	// title is empty after trimming.
	Create(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Task, error)

	// Update applies a partial update. Returns ErrTaskNotFound unless the task
	// exists and belongs to ownerID.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task. Returns ErrTaskNotFound unless the task exists
	// and belongs to ownerID.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks   store.TaskStore
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService. tasks and emitter are required; a nil
// logger falls back to slog.Default().
func NewTaskService(tasks store.TaskStore, emitter events.EventEmitter, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:   tasks,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// List implements TaskService.
func (s *taskServiceImpl) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// Create implements TaskService.
func (s *taskServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, title)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()))

	s.emit(ctx, events.NewTaskCreatedEvent(task))
	return task, nil
}

// Update implements TaskService.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	patch, err := patch.Normalize()
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.Update(ctx, ownerID, taskID, patch, s.now())
	if err != nil {
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}

	s.emit(ctx, events.NewTaskUpdatedEvent(task))
	return task, nil
}

// Delete implements TaskService.
func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	task, err := s.tasks.Delete(ctx, ownerID, taskID)
	if err != nil {
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.emit(ctx, events.NewTaskDeletedEvent(ownerID, task.ID))
	return nil
}

// emit publishes an event. Delivery is best-effort; failures are logged only.
func (s *taskServiceImpl) emit(ctx context.Context, event *events.TaskEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit task event",
			slog.String("event", event.Name),
			slog.String("room", event.Room()),
			slog.String("error", err.Error()))
	}
}
