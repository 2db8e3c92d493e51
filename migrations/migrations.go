// Package migrations bundles the schema migrations into the binary.
package migrations

import "embed"

// FS holds one directory per dialect: sqlite/ and postgres/.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
