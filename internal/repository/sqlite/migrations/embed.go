package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var files embed.FS

// FS holds the migration files, named so that lexical order is apply order.
var FS, _ = fs.Sub(files, "sql")
