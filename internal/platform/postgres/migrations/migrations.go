// Package migrations embeds the goose SQL migrations for the task schema so
// the server binary can apply them without a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS
