package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore. Update and Delete match on
// both task ID and owner, like the SQL implementation.
type MockTaskStore struct {
	CreateFn      func(ctx context.Context, task *domain.Task) error
	ListByOwnerFn func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)
	UpdateFn      func(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error)
	DeleteFn      func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	mu          sync.Mutex
	Tasks       map[uuid.UUID]*domain.Task
	CreateCalls int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *task
	m.Tasks[task.ID] = &stored
	return nil
}

// ListByOwner implements store.TaskStore, newest first.
func (m *MockTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*domain.Task, 0)
	for _, t := range m.Tasks {
		if t.UserID == ownerID {
			c := *t
			tasks = append(tasks, &c)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID.String() > tasks[j].ID.String()
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	patch domain.TaskPatch,
	updatedAt time.Time,
) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ownerID, id, patch, updatedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	patch.Apply(t, updatedAt)
	c := *t
	return &c, nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ownerID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return t, nil
}

// Count returns the number of stored tasks across all owners.
func (m *MockTaskStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tasks)
}
