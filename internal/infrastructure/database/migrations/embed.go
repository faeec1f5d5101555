// Package migrations embeds the SQL schema of the document store.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
