// Package migrations embeds the SQL migrations for the exchange journal.
package migrations

import "embed"

// FS holds the embedded *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
