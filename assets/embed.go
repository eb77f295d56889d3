// assets/embed.go
//
// Embedded SQL migrations. Files under sql/ are applied in lexical order by
// database.Migrate and recorded in the _migrations table.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var files embed.FS

// Migrations returns the migration files rooted at the sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		panic("assets: " + err.Error())
	}
	return sub
}
