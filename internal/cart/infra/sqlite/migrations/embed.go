package migrations

import "embed"

// FS contains embedded SQLite migrations for cart storage.
//
//go:embed *.sql
var FS embed.FS
