// Package migrations embeds the SQL migrations for each supported dialect.
package migrations

import "embed"

// FS contains the migration files, one directory per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
