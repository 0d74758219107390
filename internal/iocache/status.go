package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/schema"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus, useColors bool) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Requests: %d\n", status.TotalRequests)
	if status.TotalRequests > 0 {
		_, _ = fmt.Fprintf(w, "Last Request ID: %d\n", status.LastRequestID)
		_, _ = fmt.Fprintf(w, "Last Request: %s\n", status.LastRequestTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Request: %s\n", status.OldestRequestTime.Format("2006-01-02 15:04:05"))
		failed := fmt.Sprintf("%d", status.FailedRequests)
		if useColors && status.FailedRequests > 0 {
			failed = contract.ClientErrorColor.Sprint(failed)
		}
		_, _ = fmt.Fprintf(w, "Failed Requests: %s\n", failed)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
