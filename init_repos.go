// Package main: repository layer setup.
//
// initRepositories builds every repository on the shared connection pool and
// picks the SQL dialect the database was opened with.
package main

import (
	"github.com/akinalp/shopapi/database"
	"github.com/akinalp/shopapi/repository"
)

// Repositories holds every repository instance, so constructors further down
// take one value instead of a growing parameter list.
type Repositories struct {
	User    repository.UserRepository
	Product repository.ProductRepository
}

// initRepositories creates the repositories for db.
//
// *sql.DB is a concurrency-safe pool; all repositories share it.
func initRepositories(db *database.DB) *Repositories {
	if db.Dialect == database.DialectPostgres {
		return &Repositories{
			User:    repository.NewPostgresUserRepo(db.Conn),
			Product: repository.NewPostgresProductRepo(db.Conn),
		}
	}

	return &Repositories{
		User:    repository.NewSQLiteUserRepo(db.Conn),
		Product: repository.NewSQLiteProductRepo(db.Conn),
	}
}
