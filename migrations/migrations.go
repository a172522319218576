// Package migrations embeds the PostgreSQL schema as golang-migrate files.
package migrations

import "embed"

// FS holds the numbered up and down migrations at its root.
//
//go:embed *.sql
var FS embed.FS
