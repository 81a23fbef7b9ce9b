// Package database provides the SQLite connection used by the pipeline
// event journal.
//
// It opens the database with WAL mode and a busy timeout, limits the pool
// to a single writer, and applies schema migrations embedded in the binary
// by the top-level migrations package.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive and every .up.sql file has a matching .down.sql.
package database
