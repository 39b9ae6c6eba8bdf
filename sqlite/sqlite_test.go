package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docrag/sqlite"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens an in-memory database closed at test end.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM corpora").Scan(&n))
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n))
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		require.Error(t, db.Open())
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/test.db")
		require.NoError(t, db.Open())
		defer db.Close()

		var journalMode string
		err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("reopening keeps data", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir() + "/test.db"
		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		svc := sqlite.NewCorpusService(db, nil, nil)
		created, err := svc.CreateCorpus(context.Background(), "Docs", "")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()
		found, err := sqlite.NewCorpusService(db, nil, nil).FindCorpus(context.Background(), created.Handle)
		require.NoError(t, err)
		require.Equal(t, "Docs", found.Label)
	})
}

func TestDB_Migrations(t *testing.T) {
	t.Parallel()

	t.Run("records schema version", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		var version int
		require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version))
		require.Equal(t, sqlite.SchemaVersion(), version)
	})

	t.Run("reopening is a no-op", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir() + "/test.db"
		for range 2 {
			db := sqlite.NewDB(path)
			require.NoError(t, db.Open())
			require.NoError(t, db.Close())
		}
	})

	t.Run("rejects newer schema", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir() + "/test.db"
		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(context.Background(), "PRAGMA user_version = 99")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		err = sqlite.NewDB(path).Open()
		require.Error(t, err)
		require.Contains(t, err.Error(), "newer than supported")
	})
}
