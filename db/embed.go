// Package db ships the journal schema migrations with the binaries.
package db

import "embed"

// Migrations holds the goose migration files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsRoot is the directory inside Migrations that goose reads.
const MigrationsRoot = "migrations"
