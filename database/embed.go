// Package database embed file: the migration SQL is compiled into the binary,
// so a deployed server needs nothing next to it.
package database

import (
	"embed"
	"io/fs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embeddedMigrations embed.FS

// SQLiteMigrations returns the SQLite migration files rooted at ".".
func SQLiteMigrations() fs.FS {
	return mustSub("migrations/sqlite")
}

// PostgresMigrations returns the goose-annotated PostgreSQL migrations rooted at ".".
func PostgresMigrations() fs.FS {
	return mustSub("migrations/postgres")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(embeddedMigrations, dir)
	if err != nil {
		// Only possible if the embed pattern and dir disagree at build time.
		panic(err)
	}
	return sub
}
