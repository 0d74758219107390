package iocache

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/solaredge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	t.Run("sqlite cache without history", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		mgr, err := NewManager(schema.SQLiteBackend, dbPath, "", "")
		require.NoError(t, err)
		defer mgr.Close()

		assert.Nil(t, mgr.GetHistoryStore())

		store, err := mgr.OpenCacheStore()
		require.NoError(t, err)
		require.NoError(t, store.Close())

		_, err = os.Stat(dbPath)
		assert.NoError(t, err, "Database file should be created")
	})

	t.Run("empty cache backend disables caching", func(t *testing.T) {
		mgr, err := NewManager("", "", "", "")
		require.NoError(t, err)
		defer mgr.Close()

		store, err := mgr.OpenCacheStore()
		require.NoError(t, err)
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, string(schema.NoneBackend), status.Backend)
		assert.False(t, status.Connected)
	})

	t.Run("history store", func(t *testing.T) {
		mgr, err := NewManager(schema.NoneBackend, "", schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		assert.NotNil(t, mgr.GetHistoryStore())

		// Multiple closes should be safe
		mgr.Close()
		mgr.Close()
		assert.Nil(t, mgr.GetHistoryStore())
	})

	t.Run("invalid history backend", func(t *testing.T) {
		_, err := NewManager(schema.NoneBackend, "", "redis", "")
		assert.Error(t, err)
	})
}

func TestNoneBackendOperations(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err, "Failed to create none backend store")

	_, _, _, err = store.Get("test_key")
	assert.ErrorIs(t, err, sql.ErrNoRows, "Expected no rows from Get on none backend")

	err = store.Set("test_key", []byte("test_value"), 1, 123456789)
	assert.NoError(t, err, "Set should not error on none backend")

	_, _, _, err = store.Get("test_key")
	assert.Error(t, err, "Expected error from Get after Set on none backend")

	assert.NoError(t, store.Close(), "Close should not error on none backend")
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "site_cache", false},
		{"valid name with numbers", "site_cache_2", false},
		{"valid leading underscore", "_cache", false},
		{"empty", "", true},
		{"leading digit", "1cache", true},
		{"injection attempt", "cache; DROP TABLE x", true},
		{"dash", "site-cache", true},
		{"quote", `site"cache`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"site_cache"`, quoteTableName("site_cache", schema.SQLiteBackend))
	assert.Equal(t, `"site_cache"`, quoteTableName("site_cache", schema.PostgreSQLBackend))
	assert.Equal(t, "`site_cache`", quoteTableName("site_cache", schema.MySQLBackend))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 1))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 3))
	assert.Equal(t, "$2", placeholder(schema.PostgreSQLBackend, 2))
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{tableName: siteCacheTable, backend: tt.backend}
			assert.Contains(t, store.getUpsertQuery(), tt.contains)
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("t", schema.SQLiteBackend), "cache_value BLOB")
	assert.Contains(t, getCreateTableQuery("t", schema.MySQLBackend), "VARCHAR(255)")
	assert.Contains(t, getCreateTableQuery("t", schema.PostgreSQLBackend), "BYTEA")
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore("site_cache", "redis", "")
	assert.Error(t, err)
}

func TestSQLiteBackendOperations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(siteCacheTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("12345.timezone", []byte("Europe/Rome"), 1, 100))
	value, version, ts, err := store.Get("12345.timezone")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Rome", string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	// Last writer wins
	require.NoError(t, store.Set("12345.timezone", []byte("Europe/Berlin"), 1, 200))
	value, _, ts, err = store.Get("12345.timezone")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", string(value))
	assert.Equal(t, int64(200), ts)

	require.NoError(t, store.Set("777.timezone", []byte("UTC"), 1, 50))
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(50), status.OldestEntryTime.Unix())
	assert.Equal(t, int64(200), status.LastEntryTime.Unix())
	assert.Greater(t, status.TableSizeBytes, int64(0))

	var buf bytes.Buffer
	PrintCacheStatus(&buf, status)
	assert.Contains(t, buf.String(), "Total Entries: 2")
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(siteCacheTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		// Clearing again is fine
		assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		err := ClearCache(schema.SQLiteBackend, "", "")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "dbFilePath"))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("redis", "", ""))
	})
}
