package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskEventConstructors(t *testing.T) {
	owner := uuid.New()
	task, err := domain.NewTask(owner, "Buy milk")
	require.NoError(t, err)

	t.Run("created", func(t *testing.T) {
		event := NewTaskCreatedEvent(task)
		assert.Equal(t, TaskCreated, event.Name)
		assert.Equal(t, owner, event.OwnerID)
		assert.Equal(t, owner.String(), event.Room())
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

		payload, ok := event.Payload.(TaskChangedPayload)
		require.True(t, ok)
		assert.Equal(t, MessageTaskCreated, payload.Message)
		assert.Same(t, task, payload.Task)
	})

	t.Run("updated", func(t *testing.T) {
		event := NewTaskUpdatedEvent(task)
		assert.Equal(t, TaskUpdated, event.Name)
		payload, ok := event.Payload.(TaskChangedPayload)
		require.True(t, ok)
		assert.Equal(t, MessageTaskUpdated, payload.Message)
	})

	t.Run("deleted", func(t *testing.T) {
		event := NewTaskDeletedEvent(owner, task.ID)
		assert.Equal(t, TaskDeleted, event.Name)
		assert.Equal(t, owner, event.OwnerID)
		payload, ok := event.Payload.(TaskDeletedPayload)
		require.True(t, ok)
		assert.Equal(t, MessageTaskDeleted, payload.Message)
		assert.Equal(t, task.ID, payload.TaskID)
	})
}

func TestTaskEventWireShape(t *testing.T) {
	owner := uuid.New()
	taskID := uuid.New()

	raw, err := json.Marshal(NewTaskDeletedEvent(owner, taskID))
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))

	assert.Equal(t, TaskDeleted, frame["event"])
	data, ok := frame["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, MessageTaskDeleted, data["message"])
	assert.Equal(t, taskID.String(), data["taskId"])
	assert.NotContains(t, frame, "OwnerID")
}
