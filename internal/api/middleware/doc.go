// Package middleware contains the HTTP middleware shared by API routes:
// request tracing and the bearer-token guard.
package middleware
