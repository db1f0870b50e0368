package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// subscriber is a named EventHandler. The name only appears in logs and
// errors.
type subscriber struct {
	name    string
	handler EventHandler
}

// InMemoryEventEmitter fans each task event out to every subscriber in
// registration order, typically the realtime hub and the metrics recorder.
// Delivery is synchronous; one subscriber failing never stops the rest.
type InMemoryEventEmitter struct {
	mu          sync.RWMutex
	subscribers []subscriber
	logger      *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no subscribers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "task_event_fanout")),
	}
}

// RegisterHandler subscribes handler under name.
func (e *InMemoryEventEmitter) RegisterHandler(name string, handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, subscriber{name: name, handler: handler})
	e.logger.Debug("task event subscriber registered",
		slog.String("subscriber", name),
		slog.Int("subscribers", len(e.subscribers)))
}

// EmitEvent delivers event to every subscriber. The returned error joins
// every subscriber failure, each prefixed with the subscriber name.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskEvent) error {
	e.mu.RLock()
	subs := append([]subscriber(nil), e.subscribers...)
	e.mu.RUnlock()

	log := e.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event", event.Name),
		slog.String("room", event.Room()))

	if len(subs) == 0 {
		log.Warn("task event dropped: no subscribers")
		return nil
	}

	var errs []error
	for _, sub := range subs {
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			log.Error("task event subscriber failed",
				slog.String("subscriber", sub.name),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", sub.name, err))
		}
	}

	log.Debug("task event delivered", slog.Int("subscribers", len(subs)), slog.Int("failed", len(errs)))
	return errors.Join(errs...)
}
