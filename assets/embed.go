// Package assets embeds the static configuration shipped with the server:
// the board layout, the building cost table and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"

	"github.com/robalobadob/settlers/internal/board"
)

//go:embed field.json buildings-cost.json sql/*.sql
var FS embed.FS

// DefaultLayout decodes the embedded board layout.
func DefaultLayout() (*board.Layout, error) {
	f, err := FS.Open("field.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return board.LoadLayout(f)
}

// DefaultCosts decodes the embedded building cost table.
func DefaultCosts() (board.Costs, error) {
	f, err := FS.Open("buildings-cost.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return board.LoadCosts(f)
}

// Migrations returns the embedded sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}
