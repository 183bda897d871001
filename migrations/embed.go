// Package migrations holds the versioned postgres schema, compiled into the
// binaries so deployments do not need the directory on disk.
package migrations

import "embed"

// FS contains every NNNNNN_name.{up,down}.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
