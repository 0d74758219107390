package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/solaredge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.RecordRequest(schema.RequestRecord{Endpoint: "accounts"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	records, err := store.GetAllRequests()
	require.NoError(t, err)
	assert.Nil(t, records)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStore_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRequests)

	site := "12345"
	first := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	id1, err := store.RecordRequest(schema.RequestRecord{
		Endpoint: "site-details", SiteID: &site, URL: "https://example.com/site/12345/details",
		StatusCode: 200, ElapsedMs: 95, RequestedAt: first,
	})
	require.NoError(t, err)
	id2, err := store.RecordRequest(schema.RequestRecord{
		Endpoint: "accounts", URL: "https://example.com/accounts/list",
		StatusCode: 403, ElapsedMs: 12, RequestedAt: first.Add(time.Hour), Failed: true,
	})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	records, err := store.GetAllRequests()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, id1, records[0].RequestID)
	assert.Equal(t, "site-details", records[0].Endpoint)
	require.NotNil(t, records[0].SiteID)
	assert.Equal(t, "12345", *records[0].SiteID)
	assert.Equal(t, int32(200), records[0].StatusCode)
	assert.False(t, records[0].Failed)
	assert.True(t, first.Equal(records[0].RequestedAt))

	assert.Nil(t, records[1].SiteID)
	assert.True(t, records[1].Failed)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRequests)
	assert.Equal(t, 1, status.FailedRequests)
	assert.Equal(t, id2, status.LastRequestID)
	assert.True(t, first.Equal(status.OldestRequestTime))
	assert.True(t, first.Add(time.Hour).Equal(status.LastRequestTime))
	assert.Equal(t, int64(2), status.TableSizes[requestsTable])

	var buf bytes.Buffer
	PrintHistoryStatus(&buf, status, false)
	assert.Contains(t, buf.String(), "Total Requests: 2")
	assert.Contains(t, buf.String(), "Failed Requests: 1")
	assert.Contains(t, buf.String(), "solaredge_requests: 2 rows")
}

func TestExecuteHistoryExport(t *testing.T) {
	dir := t.TempDir()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	out := filepath.Join(dir, "history.parquet")

	err = ExecuteHistoryExport(store, "")
	assert.Error(t, err, "output file is required")

	err = ExecuteHistoryExport(nil, out)
	assert.Error(t, err, "disabled history cannot be exported")

	err = ExecuteHistoryExport(store, out)
	assert.Error(t, err, "empty history cannot be exported")

	_, err = store.RecordRequest(schema.RequestRecord{Endpoint: "version-current", URL: "u", StatusCode: 200, RequestedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, ExecuteHistoryExport(store, out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestClearHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestParseTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)

	got, err := parseTime(ts)
	require.NoError(t, err)
	assert.Equal(t, ts, got)

	got, err = parseTime(ts.Format(time.RFC3339Nano))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	got, err = parseTime([]byte(ts.Format(time.RFC3339Nano)))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	_, err = parseTime(42)
	assert.Error(t, err)
}
