package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasklist-api/internal/events"
)

// RecordingEmitter implements events.EventEmitter and keeps every event.
type RecordingEmitter struct {
	mu     sync.Mutex
	Events []*events.TaskEvent
	Err    error
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent records the event and returns Err.
func (r *RecordingEmitter) EmitEvent(_ context.Context, event *events.TaskEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return r.Err
}

// Names returns the recorded event names in emission order.
func (r *RecordingEmitter) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		names = append(names, e.Name)
	}
	return names
}

// Last returns the most recent event, or nil.
func (r *RecordingEmitter) Last() *events.TaskEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Events) == 0 {
		return nil
	}
	return r.Events[len(r.Events)-1]
}
