// Package db carries the schema migrations, embedded so the migrate
// binary runs from any working directory.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
