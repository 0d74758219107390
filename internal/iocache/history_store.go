package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/schema"
)

// Table names for request history.
const (
	requestsTable   = "solaredge_requests"
	migrationsTable = "solaredge_schema_migrations"
)

// HistoryStoreImpl implements the HistoryStore interface.
// MySQL connection strings need parseTime=true so timestamps scan into time.Time.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateRequestsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", requestsTable, err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// getCreateRequestsQuery returns the CREATE TABLE query for solaredge_requests.
// It matches the first migration so either path yields the same schema.
func getCreateRequestsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(requestsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				request_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				endpoint VARCHAR(100) NOT NULL,
				site_id VARCHAR(255),
				url TEXT NOT NULL,
				status_code INT NOT NULL,
				elapsed_ms BIGINT NOT NULL,
				requested_at DATETIME(6) NOT NULL,
				failed BOOLEAN NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				request_id BIGSERIAL PRIMARY KEY,
				endpoint TEXT NOT NULL,
				site_id TEXT,
				url TEXT NOT NULL,
				status_code INT NOT NULL,
				elapsed_ms BIGINT NOT NULL,
				requested_at TIMESTAMPTZ NOT NULL,
				failed BOOLEAN NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				request_id INTEGER PRIMARY KEY AUTOINCREMENT,
				endpoint TEXT NOT NULL,
				site_id TEXT,
				url TEXT NOT NULL,
				status_code INTEGER NOT NULL,
				elapsed_ms INTEGER NOT NULL,
				requested_at TEXT NOT NULL,
				failed INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// RecordRequest stores one completed request and returns its ID.
func (hs *HistoryStoreImpl) RecordRequest(record schema.RequestRecord) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(requestsTable, hs.backend)
	args := []any{
		record.Endpoint, record.SiteID, record.URL, record.StatusCode,
		record.ElapsedMs, formatTime(record.RequestedAt, hs.backend), record.Failed,
	}

	var requestID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (endpoint, site_id, url, status_code, elapsed_ms, requested_at, failed)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING request_id`, quotedTableName)
		if err := hs.db.QueryRow(query, args...).Scan(&requestID); err != nil {
			return 0, fmt.Errorf("failed to insert request record: %w", err)
		}
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (endpoint, site_id, url, status_code, elapsed_ms, requested_at, failed)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
		result, err := hs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert request record: %w", err)
		}
		if requestID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read request id: %w", err)
		}
	}

	return requestID, nil
}

// GetAllRequests retrieves all request records from the store.
func (hs *HistoryStoreImpl) GetAllRequests() ([]schema.RequestRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT request_id, endpoint, site_id, url, status_code, elapsed_ms, requested_at, failed
		FROM %s ORDER BY request_id`, quoteTableName(requestsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query request records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RequestRecord
	for rows.Next() {
		var record schema.RequestRecord
		var requestedAt any
		if err := rows.Scan(&record.RequestID, &record.Endpoint, &record.SiteID, &record.URL,
			&record.StatusCode, &record.ElapsedMs, &requestedAt, &record.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan request record: %w", err)
		}
		if record.RequestedAt, err = parseTime(requestedAt); err != nil {
			return nil, fmt.Errorf("failed to parse requested_at: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request records: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(requestsTable, hs.backend)

	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalRequests); err != nil {
		return status, fmt.Errorf("failed to get total requests: %w", err)
	}
	status.TableSizes[requestsTable] = int64(status.TotalRequests)

	if status.TotalRequests == 0 {
		return status, nil
	}

	var lastTime, oldestTime any
	row = hs.db.QueryRow(fmt.Sprintf("SELECT request_id, requested_at FROM %s ORDER BY request_id DESC LIMIT 1", quotedTableName))
	if err := row.Scan(&status.LastRequestID, &lastTime); err != nil {
		return status, fmt.Errorf("failed to get last request info: %w", err)
	}
	row = hs.db.QueryRow(fmt.Sprintf("SELECT requested_at FROM %s ORDER BY request_id ASC LIMIT 1", quotedTableName))
	if err := row.Scan(&oldestTime); err != nil {
		return status, fmt.Errorf("failed to get oldest request time: %w", err)
	}

	var err error
	if status.LastRequestTime, err = parseTime(lastTime); err != nil {
		return status, fmt.Errorf("failed to parse last request time: %w", err)
	}
	if status.OldestRequestTime, err = parseTime(oldestTime); err != nil {
		return status, fmt.Errorf("failed to parse oldest request time: %w", err)
	}

	failedQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE failed = %s", quotedTableName, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(failedQuery, true).Scan(&status.FailedRequests); err != nil {
		return status, fmt.Errorf("failed to get failed requests: %w", err)
	}

	return status, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// parseTime reads a timestamp column. SQLite stores text, the others native times.
func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
