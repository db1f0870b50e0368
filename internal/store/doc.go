// Package store defines the persistence interfaces for users and tasks and
// the errors implementations return. Concrete implementations live under
// internal/platform.
package store
