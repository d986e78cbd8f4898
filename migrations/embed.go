// Package migrations embeds the postgres schema migrations so the migrate
// tool works without a checkout of this directory.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate naming
// (NNNNNN_name.up.sql / NNNNNN_name.down.sql).
//
//go:embed *.sql
var FS embed.FS
