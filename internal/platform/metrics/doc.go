// Package metrics exposes Prometheus metrics for the HTTP API, the realtime
// hub and task events.
//
// A Metrics value owns its own registry, so tests can create as many as they
// like without colliding on the global default registerer.
package metrics
