package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
)

// Task event names as seen by realtime clients.
const (
	TaskCreated = "taskCreated"
	TaskUpdated = "taskUpdated"
	TaskDeleted = "taskDeleted"
)

// Human-readable messages carried in event payloads.
const (
	MessageTaskCreated = "New task created"
	MessageTaskUpdated = "Task updated"
	MessageTaskDeleted = "Task deleted"
)

// TaskEvent is a notification about a change to one user's tasks. It is
// delivered only to that user's channel.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Name is one of TaskCreated, TaskUpdated or TaskDeleted
	Name string `json:"event"`

	// OwnerID selects the recipient channel
	OwnerID uuid.UUID `json:"-"`

	// Payload is sent to clients as the frame's data
	Payload any `json:"data"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"-"`
}

// TaskChangedPayload accompanies taskCreated and taskUpdated.
type TaskChangedPayload struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

// TaskDeletedPayload accompanies taskDeleted.
type TaskDeletedPayload struct {
	Message string    `json:"message"`
	TaskID  uuid.UUID `json:"taskId"`
}

// Room returns the channel name for the event's owner.
func (e *TaskEvent) Room() string {
	return e.OwnerID.String()
}

func newTaskEvent(name string, ownerID uuid.UUID, payload any) *TaskEvent {
	return &TaskEvent{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTaskCreatedEvent builds a taskCreated event for the task's owner.
func NewTaskCreatedEvent(task *domain.Task) *TaskEvent {
	return newTaskEvent(TaskCreated, task.UserID, TaskChangedPayload{
		Message: MessageTaskCreated,
		Task:    task,
	})
}

// NewTaskUpdatedEvent builds a taskUpdated event for the task's owner.
func NewTaskUpdatedEvent(task *domain.Task) *TaskEvent {
	return newTaskEvent(TaskUpdated, task.UserID, TaskChangedPayload{
		Message: MessageTaskUpdated,
		Task:    task,
	})
}

// NewTaskDeletedEvent builds a taskDeleted event for the owner.
func NewTaskDeletedEvent(ownerID, taskID uuid.UUID) *TaskEvent {
	return newTaskEvent(TaskDeleted, ownerID, TaskDeletedPayload{
		Message: MessageTaskDeleted,
		TaskID:  taskID,
	})
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}
