package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/database/dynamodb"
	"github.com/sagarc03/bluelist/database/postgres"
	"github.com/sagarc03/bluelist/database/sqlite"
)

// Config holds the configuration for connecting to a document store.
type Config struct {
	// Type specifies the store: "sqlite", "postgres" or "dynamodb"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres dynamodb"`
	// DSN is the data source name for the SQL stores
	DSN string `mapstructure:"dsn"`
	// Tables names the SQL tables
	Tables bluelist.Tables `mapstructure:"tables"`
	// AutoMigrate creates missing tables on connect
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// DynamoDB configures the dynamodb store
	DynamoDB dynamodb.Config `mapstructure:"dynamodb"`
}

// Connect opens the configured store, optionally migrates it, validates the
// schema and returns a ready DocumentStore. The cleanup function releases
// the connection.
func Connect(ctx context.Context, cfg Config) (bluelist.DocumentStore, func(), error) {
	switch cfg.Type {
	case "sqlite":
		return connectSQLite(ctx, cfg)
	case "postgres":
		return connectPostgres(ctx, cfg)
	case "dynamodb":
		return connectDynamoDB(ctx, cfg)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Migrate creates the configured store's tables without serving.
func Migrate(ctx context.Context, cfg Config) error {
	cfg.AutoMigrate = true

	_, cleanup, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}
	cleanup()
	return nil
}

func connectSQLite(ctx context.Context, cfg Config) (bluelist.DocumentStore, func(), error) {
	db, err := sqlite.Open(ctx, cfg.DSN, cfg.Tables)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err = db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("validate sqlite schema: %w", err)
	}

	repo, err := db.Store()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create sqlite repo: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return repo, cleanup, nil
}

func connectPostgres(ctx context.Context, cfg Config) (bluelist.DocumentStore, func(), error) {
	db, err := postgres.Open(ctx, cfg.DSN, cfg.Tables)
	if err != nil {
		return nil, nil, err
	}

	if err = db.Ping(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.AutoMigrate {
		if err = db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}

	if err = db.Validate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("validate postgres schema: %w", err)
	}

	repo, err := db.Store()
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create postgres repo: %w", err)
	}

	return repo, db.Close, nil
}

func connectDynamoDB(ctx context.Context, cfg Config) (bluelist.DocumentStore, func(), error) {
	client, err := dynamodb.NewClient(ctx, cfg.DynamoDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect dynamodb: %w", err)
	}

	store, err := dynamodb.New(client, cfg.DynamoDB.Table)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err = store.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate dynamodb: %w", err)
		}
	}

	if err = store.Ping(ctx); err != nil {
		return nil, nil, err
	}

	return store, func() {}, nil
}
