// Package migrations embeds the server's SQL schema migrations.
package migrations

import "embed"

// FS holds the golang-migrate files (NNN_name.up.sql / NNN_name.down.sql).
//
//go:embed *.sql
var FS embed.FS
