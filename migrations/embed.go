// Package migrations holds the versioned SQL schema.
package migrations

import "embed"

// FS contains every *.up.sql / *.down.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
