package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(dsn string, autoMigrate bool) database.Config {
	return database.Config{
		Type:        "sqlite",
		DSN:         dsn,
		Tables:      bluelist.Tables{Items: "items"},
		AutoMigrate: autoMigrate,
	}
}

func TestConnect_SQLiteAutoMigrate(t *testing.T) {
	ctx := context.Background()

	store, cleanup, err := database.Connect(ctx, newTestConfig(":memory:", true))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.NoError(t, store.Ping(ctx))

	rec, err := store.Insert(ctx, bluelist.ItemType, map[string]any{"name": "sensor1"})
	require.NoError(t, err)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "sensor1", got.Fields["name"])
}

func TestConnect_SQLiteWithoutMigrationFailsValidation(t *testing.T) {
	_, _, err := database.Connect(context.Background(), newTestConfig(":memory:", false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate sqlite schema")
}

func TestMigrate_ThenConnect(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "bluelist.db")

	require.NoError(t, database.Migrate(ctx, newTestConfig(dsn, false)))

	store, cleanup, err := database.Connect(ctx, newTestConfig(dsn, false))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	items, err := store.Find(ctx, bluelist.ItemType, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestConnect_InvalidTableName(t *testing.T) {
	cfg := newTestConfig(":memory:", true)
	cfg.Tables.Items = "Bad Name"

	_, _, err := database.Connect(context.Background(), cfg)
	assert.Error(t, err)
}

func TestConnect_UnsupportedType(t *testing.T) {
	for _, typ := range []string{"", "mysql"} {
		_, _, err := database.Connect(context.Background(), database.Config{Type: typ})
		require.Error(t, err, typ)
		assert.Contains(t, err.Error(), "unsupported database type")
	}
}
