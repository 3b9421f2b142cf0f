// Package migrations embeds the SQL migrations for the SQLite store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql files applied in version order.
//
//go:embed *.sql
var FS embed.FS
