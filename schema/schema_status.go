package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the request history store.
type HistoryStatus struct {
	Backend           string           `json:"backend"`
	Connected         bool             `json:"connected"`
	TotalRequests     int              `json:"total_requests"`
	LastRequestID     int64            `json:"last_request_id"`
	LastRequestTime   time.Time        `json:"last_request_time"`
	OldestRequestTime time.Time        `json:"oldest_request_time"`
	FailedRequests    int              `json:"failed_requests"`
	TableSizes        map[string]int64 `json:"table_sizes"`
}

// RequestRecord represents a row from the solaredge_requests table.
type RequestRecord struct {
	RequestID   int64
	Endpoint    string
	SiteID      *string
	URL         string
	StatusCode  int32
	ElapsedMs   int64
	RequestedAt time.Time
	Failed      bool
}
