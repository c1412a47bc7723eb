// Package migrations embeds the SQLite schema migrations for the local
// transfer history. Applied with goose on client startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
