package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestDatabase opens a private in-memory database with a unique table name.
func setupTestDatabase(t *testing.T) *sqlite.Database {
	t.Helper()

	tables := bluelist.Tables{Items: fmt.Sprintf("items_%s", getRandomString(t))}

	db, err := sqlite.Open(context.Background(), ":memory:", tables)
	require.NoError(t, err, "failed to open")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// setupTestRepo returns a migrated store.
func setupTestRepo(t *testing.T) *sqlite.Repo {
	t.Helper()

	db := setupTestDatabase(t)
	require.NoError(t, db.Migrate(context.Background()), "failed to migrate")

	repo, err := db.Store()
	require.NoError(t, err)
	return repo
}
