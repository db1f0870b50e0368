// Package config handles configuration loading, parsing, and validation
// from a YAML file and environment variables. It provides type-safe access to
// the settings the server needs while keeping configuration details separate
// from business logic.
package config
