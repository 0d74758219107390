// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"github.com/huangsam/solaredge/schema"
)

// CacheManager hands out the persistent stores used by the API client.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	// OpenCacheStore opens the key-value store backing the site timezone cache.
	// Callers close it when the lookup is done.
	OpenCacheStore() (CacheStore, error)

	// GetHistoryStore returns the request history store, or nil when disabled.
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording API requests.
type HistoryStore interface {
	// RecordRequest stores one completed request and returns its unique ID
	RecordRequest(record schema.RequestRecord) (int64, error)

	// GetAllRequests returns every recorded request in insertion order
	GetAllRequests() ([]schema.RequestRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
