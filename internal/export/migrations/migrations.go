// Package migrations embeds the export store schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
