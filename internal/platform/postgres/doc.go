// Package postgres provides PostgreSQL implementations of the store
// interfaces, the mapping from driver errors to store errors, and the goose
// migration runner for the embedded schema.
package postgres
