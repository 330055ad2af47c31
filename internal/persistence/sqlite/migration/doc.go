// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files are read from an fs.FS (normally an embed.FS compiled into
// the binary) and must be named {version}_{description}.sql, for example
// "001_initial_schema.sql". Applied versions are tracked in the
// schema_migrations table so each file runs exactly once.
//
// Example usage:
//
//	runner := migration.NewRunner(migration.NewFileScanner(files, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	if err := runner.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
