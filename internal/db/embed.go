package db

import "embed"

// EmbedMigrations contains the embedded auth-store schema migrations.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
