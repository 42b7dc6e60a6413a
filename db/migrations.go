package db

import "embed"

// Migrations holds the goose SQL migrations, rooted at "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
