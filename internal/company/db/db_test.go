package db

import (
	"context"
	"testing"

	"github.com/gartstein/companydesk/internal/company/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite slot store for testing.
func SetupTestDB(t *testing.T) *SlotStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store, err := newSlotStore(db, zaptest.NewLogger(t))
	require.NoError(t, err, "failed to migrate test database")
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// TestGetMissingKey verifies a never-written key reads as absent.
func TestGetMissingKey(t *testing.T) {
	store := SetupTestDB(t)

	value, err := store.Get(context.Background(), "companies")
	assert.NoError(t, err, "Get should not fail for a missing key")
	assert.Nil(t, value, "missing key should read as nil")
}

// TestPutThenGet checks the first write inserts the row.
func TestPutThenGet(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "companies", []byte(`[{"id":"a"}]`)))

	value, err := store.Get(ctx, "companies")
	assert.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(value))
}

// TestPutOverwrites ensures a second write replaces the blob in place.
func TestPutOverwrites(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "companies", []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Put(ctx, "companies", []byte(`[]`)))

	value, err := store.Get(ctx, "companies")
	assert.NoError(t, err)
	assert.JSONEq(t, `[]`, string(value))

	var count int64
	require.NoError(t, store.db.Table("slots").Count(&count).Error)
	assert.Equal(t, int64(1), count, "overwrite must not add rows")
}

// TestKeysAreIndependent checks slots do not bleed into each other.
func TestKeysAreIndependent(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte(`[1]`)))
	require.NoError(t, store.Put(ctx, "b", []byte(`[2]`)))

	a, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(a))
}

// TestAdapterOverSlotStore runs the storage adapter against the gorm backend.
func TestAdapterOverSlotStore(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()

	adapter, err := storage.NewAdapter(store, "", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, adapter.LoadAll(ctx))

	records := adapter.LoadAll(ctx)
	require.NoError(t, adapter.SaveAll(ctx, records))
	assert.Empty(t, adapter.LoadAll(ctx))
}

// TestNewSlotStoreUnknownDriver rejects unsupported drivers before connecting.
func TestNewSlotStoreUnknownDriver(t *testing.T) {
	_, err := NewSlotStore(context.Background(), &Config{Driver: "oracle"}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "unsupported database driver")
}

// TestNewSlotStoreSQLiteFile opens a file-backed database.
func TestNewSlotStoreSQLiteFile(t *testing.T) {
	path := t.TempDir() + "/slots.sqlite"
	store, err := NewSlotStore(context.Background(), &Config{Driver: DriverSQLite, SQLitePath: path}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), "companies", []byte(`[]`)))
	value, err := store.Get(context.Background(), "companies")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(value))
}
