// Package database connects the gateway to its document store.
//
// # Supported Backends
//
//   - SQLite: embedded store for development and single-node deployments
//   - PostgreSQL: payloads kept in a JSONB column behind a pgx pool
//   - DynamoDB: a managed table keyed by "id", reached with the AWS SDK
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "bluelist.db",
//	    Tables:      bluelist.Tables{Items: "bluelist_items"},
//	    AutoMigrate: true,
//	}
//
//	store, cleanup, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// Connect opens the connection, runs migrations when AutoMigrate is set,
// validates the schema and returns a ready bluelist.DocumentStore.
package database
