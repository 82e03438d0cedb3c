// Package database provides a GORM-based database component with connection
// pooling, retrying connect, health checks and transaction helpers.
//
// The driver is picked from Config.Driver: "sqlite" (default, file or
// in-memory DSN) or "postgres" (pgx underneath).
//
//	db := database.NewComponent(cfg.Database, log).WithAutoMigrate(&Room{})
//	app.RegisterComponent(db)
//
// Errors coming out of GORM are translated to *errors.AppError with
// FromDatabase so HTTP handlers can render them directly.
//
// Versioned, programmatic migrations live in the migration subpackage.
package database
