package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/events"
	"github.com/phrazzld/tasklist-api/internal/mocks"
	"github.com/phrazzld/tasklist-api/internal/service"
	"github.com/phrazzld/tasklist-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskService(t *testing.T) (service.TaskService, *mocks.MockTaskStore, *mocks.RecordingEmitter) {
	t.Helper()
	tasks := mocks.NewMockTaskStore()
	emitter := &mocks.RecordingEmitter{}
	svc, err := service.NewTaskService(tasks, emitter, nil)
	require.NoError(t, err)
	return svc, tasks, emitter
}

func ptr[T any](v T) *T { return &v }

func TestNewTaskService(t *testing.T) {
	t.Parallel()

	_, err := service.NewTaskService(nil, &mocks.RecordingEmitter{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "tasks")

	_, err = service.NewTaskService(mocks.NewMockTaskStore(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "emitter")
}

func TestTaskService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()

	t.Run("trims title and emits", func(t *testing.T) {
		t.Parallel()
		svc, tasks, emitter := newTaskService(t)

		task, err := svc.Create(ctx, owner, "  Buy milk  ")
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", task.Title)
		assert.False(t, task.Completed)
		assert.Equal(t, owner, task.UserID)
		assert.Equal(t, 1, tasks.Count())

		require.Equal(t, []string{events.TaskCreated}, emitter.Names())
		event := emitter.Last()
		assert.Equal(t, owner, event.OwnerID)
		payload := event.Payload.(events.TaskChangedPayload)
		assert.Equal(t, "New task created", payload.Message)
		assert.Equal(t, task.ID, payload.Task.ID)
	})

	for _, title := range []string{"", "   ", "\t\n"} {
		t.Run("rejects blank title "+title, func(t *testing.T) {
			t.Parallel()
			svc, tasks, emitter := newTaskService(t)

			_, err := svc.Create(ctx, owner, title)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, tasks.CreateCalls, "store must not be touched")
			assert.Empty(t, emitter.Events)
		})
	}

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()
		svc, tasks, emitter := newTaskService(t)
		storeErr := errors.New("connection reset")
		tasks.CreateFn = func(context.Context, *domain.Task) error { return storeErr }

		_, err := svc.Create(ctx, owner, "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
		var svcErr *service.TaskServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create_task", svcErr.Operation)
		assert.Empty(t, emitter.Events)
	})

	t.Run("emission failure does not fail the request", func(t *testing.T) {
		t.Parallel()
		svc, tasks, emitter := newTaskService(t)
		emitter.Err = errors.New("hub closed")

		task, err := svc.Create(ctx, owner, "still saved")
		require.NoError(t, err)
		assert.NotNil(t, task)
		assert.Equal(t, 1, tasks.Count())
	})
}

func TestTaskService_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty list is not nil", func(t *testing.T) {
		t.Parallel()
		svc, tasks, _ := newTaskService(t)
		tasks.ListByOwnerFn = func(context.Context, uuid.UUID) ([]*domain.Task, error) { return nil, nil }

		list, err := svc.List(ctx, uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("only own tasks, newest first", func(t *testing.T) {
		t.Parallel()
		svc, tasks, _ := newTaskService(t)
		alice, bob := uuid.New(), uuid.New()

		base := time.Now().UTC()
		for i, title := range []string{"first", "second", "third"} {
			task, err := domain.NewTask(alice, title)
			require.NoError(t, err)
			task.CreatedAt = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, tasks.Create(ctx, task))
		}
		_, err := svc.Create(ctx, bob, "bob's")
		require.NoError(t, err)

		list, err := svc.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "third", list[0].Title)
		assert.Equal(t, "second", list[1].Title)
		assert.Equal(t, "first", list[2].Title)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		svc, tasks, _ := newTaskService(t)
		tasks.ListByOwnerFn = func(context.Context, uuid.UUID) ([]*domain.Task, error) {
			return nil, errors.New("boom")
		}

		_, err := svc.List(ctx, uuid.New())
		var svcErr *service.TaskServiceError
		assert.ErrorAs(t, err, &svcErr)
	})
}

func TestTaskService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	t.Run("partial update preserves other fields", func(t *testing.T) {
		t.Parallel()
		svc, _, emitter := newTaskService(t)
		task, err := svc.Create(ctx, alice, "Buy milk")
		require.NoError(t, err)

		updated, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{Completed: ptr(true)})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "Buy milk", updated.Title)
		assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))

		assert.Equal(t, []string{events.TaskCreated, events.TaskUpdated}, emitter.Names())
		payload := emitter.Last().Payload.(events.TaskChangedPayload)
		assert.Equal(t, "Task updated", payload.Message)
		assert.True(t, payload.Task.Completed)
	})

	t.Run("empty patch succeeds and emits", func(t *testing.T) {
		t.Parallel()
		svc, _, emitter := newTaskService(t)
		task, err := svc.Create(ctx, alice, "Walk dog")
		require.NoError(t, err)

		updated, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{})
		require.NoError(t, err)
		assert.Equal(t, task.Title, updated.Title)
		assert.Equal(t, task.Completed, updated.Completed)
		assert.Equal(t, events.TaskUpdated, emitter.Last().Name)
	})

	t.Run("title is trimmed", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTaskService(t)
		task, err := svc.Create(ctx, alice, "old")
		require.NoError(t, err)

		updated, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{Title: ptr("  new  ")})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Title)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		t.Parallel()
		svc, _, emitter := newTaskService(t)
		task, err := svc.Create(ctx, alice, "keep")
		require.NoError(t, err)

		_, err = svc.Update(ctx, alice, task.ID, domain.TaskPatch{Title: ptr("   ")})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, []string{events.TaskCreated}, emitter.Names())
	})

	t.Run("other owner gets not found", func(t *testing.T) {
		t.Parallel()
		svc, tasks, emitter := newTaskService(t)
		task, err := svc.Create(ctx, alice, "private")
		require.NoError(t, err)

		_, err = svc.Update(ctx, bob, task.ID, domain.TaskPatch{Completed: ptr(true)})
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Equal(t, []string{events.TaskCreated}, emitter.Names())

		list, err := tasks.ListByOwner(ctx, alice)
		require.NoError(t, err)
		assert.False(t, list[0].Completed)
	})

	t.Run("unknown id gets not found", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTaskService(t)
		_, err := svc.Update(ctx, alice, uuid.New(), domain.TaskPatch{})
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	svc, tasks, emitter := newTaskService(t)
	task, err := svc.Create(ctx, alice, "to remove")
	require.NoError(t, err)

	err = svc.Delete(ctx, bob, task.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
	assert.Equal(t, 1, tasks.Count())

	require.NoError(t, svc.Delete(ctx, alice, task.ID))
	assert.Equal(t, 0, tasks.Count())

	event := emitter.Last()
	assert.Equal(t, events.TaskDeleted, event.Name)
	assert.Equal(t, alice, event.OwnerID)
	payload := event.Payload.(events.TaskDeletedPayload)
	assert.Equal(t, "Task deleted", payload.Message)
	assert.Equal(t, task.ID, payload.TaskID)

	err = svc.Delete(ctx, alice, task.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestNewTaskServiceError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, service.NewTaskServiceError("op", "msg", nil))
	assert.Equal(t, service.ErrTaskNotFound, service.NewTaskServiceError("op", "msg", store.ErrTaskNotFound))

	cause := errors.New("boom")
	err := service.NewTaskServiceError("list_tasks", "failed", cause)
	assert.EqualError(t, err, "task service list_tasks failed: failed: boom")
}
