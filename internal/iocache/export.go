package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/parquet"
)

// ExecuteHistoryExport writes every recorded request to a Parquet file.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history is disabled. Set --history-backend to record requests")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRequests == 0 {
		return errors.New("no request history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total requests: %d\n", status.TotalRequests)

	records, err := store.GetAllRequests()
	if err != nil {
		return fmt.Errorf("failed to retrieve request history: %w", err)
	}

	requests := parquet.ConvertRequestRecords(records)
	if err := parquet.WriteRequestsParquet(requests, outputFile); err != nil {
		return fmt.Errorf("failed to write request history: %w", err)
	}
	fmt.Printf("Exported %d requests to: %s\n", len(requests), outputFile)

	return nil
}
