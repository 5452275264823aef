package migrations

import "embed"

// FS contains embedded SQLite migrations for the recently viewed history.
//
//go:embed *.sql
var FS embed.FS
