// Package database provides the GORM-backed database component: driver
// selection, connection pooling with retry, auto-migration, transactions and
// translation of database errors into application errors.
//
// Driver "sqlite" (the default) suits development and tests; "postgres" is
// the production driver. WithDriver overrides the dialector entirely.
//
//	comp := database.NewComponent(cfg.Database, log).
//	    WithAutoMigrate(&messaging.Message{})
//	registry.Register(comp)
//
// The component respects the Enabled flag. When disabled it never connects
// and DB returns nil; callers that need persistence check for that.
package database
