package snapshot_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/sqlplan/snapshot"
)

func TestStoreSQLite(t *testing.T) {
	t.Parallel()

	db, err := snapshot.OpenSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	store := snapshot.NewStore(db)
	require.NoError(t, store.Init(ctx))
	// Init is idempotent.
	require.NoError(t, store.Init(ctx))

	first, err := snapshot.Capture(declareState(t))
	require.NoError(t, err)
	first.CreatedAt = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, first))

	second, err := snapshot.Capture(declareState(t))
	require.NoError(t, err)
	second.CreatedAt = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, loaded.ID)
	assert.Len(t, loaded.Entities, len(first.Entities))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, ids)

	_, err = store.Load(ctx, "no-such-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, snapshot.ErrNoSnapshot))
}

func TestStoreLatestEmpty(t *testing.T) {
	t.Parallel()

	db, err := snapshot.OpenSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer db.Close()

	store := snapshot.NewStore(db)
	require.NoError(t, store.Init(context.Background()))
	_, err = store.Latest(context.Background())
	assert.True(t, errors.Is(err, snapshot.ErrNoSnapshot))
}

func TestStoreSaveStatement(t *testing.T) {
	t.Parallel()

	db, mk, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	snap, err := snapshot.Capture(declareState(t))
	require.NoError(t, err)

	mk.ExpectExec(regexp.QuoteMeta("INSERT INTO sqlplan_snapshots (id, created_at, data) VALUES (?, ?, ?)")).
		WithArgs(snap.ID, snap.CreatedAt.UTC().Format(time.RFC3339), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := snapshot.NewStore(db)
	require.NoError(t, store.Save(context.Background(), snap))
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestStoreCustomTable(t *testing.T) {
	t.Parallel()

	db, mk, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mk.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_states")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := snapshot.NewStore(db, snapshot.WithTable("schema_states"))
	require.NoError(t, store.Init(context.Background()))
	require.NoError(t, mk.ExpectationsWereMet())
}
