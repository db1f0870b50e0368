// Package service contains the application-specific use cases. It orchestrates
// domain objects and the store interfaces (defined in internal/store) to fulfill
// application features, and publishes change notifications through
// internal/events.
//
// Service methods return sentinel errors for expected conditions (see
// errors.go) and wrap everything else; the API layer maps them to HTTP
// status codes with errors.Is.
//
// Authentication lives in the auth subpackage.
package service
