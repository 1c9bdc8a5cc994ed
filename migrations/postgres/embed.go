// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the postgres migrations for the settings service.
//
//go:embed *.sql
var FS embed.FS
