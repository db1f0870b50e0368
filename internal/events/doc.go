// Package events defines task change notifications and the emitter that fans
// them out to handlers.
//
// The task service emits a TaskEvent after every successful mutation. The
// InMemoryEventEmitter hands each event to every registered EventHandler, in
// registration order; the realtime hub and the metrics recorder are the
// handlers in a running server. A failing handler does not prevent the rest
// from seeing the event.
package events
