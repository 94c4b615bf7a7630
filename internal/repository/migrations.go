package repository

import "embed"

// MigrationsFS - схема таблиц контента для golang-migrate.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir - каталог миграций внутри MigrationsFS.
const MigrationsDir = "migrations"
