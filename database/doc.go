// Package database provides the GORM connection used by the user store,
// with connection retry, pool settings, a zerolog query logger, error
// classification and versioned SQL migrations run through golang-migrate.
//
// Two drivers are supported: "sqlite" (development and tests) and
// "postgres" (production, over pgx).
//
//	db, err := database.Open(ctx, cfg, log)
//	if err := db.MigrateUp(); err != nil { ... }
//
// Component wraps the same steps for the bootstrap lifecycle.
package database
