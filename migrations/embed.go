// Package migrations carries the SQLite schema scripts compiled into the
// binaries.
package migrations

import "embed"

// FS holds every NNN_name.sql script in this directory
//
//go:embed *.sql
var FS embed.FS
