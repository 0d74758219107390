// Package parquet exports request history and tabelized responses to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/solaredge/internal/tabular"
	"github.com/huangsam/solaredge/schema"
	"github.com/parquet-go/parquet-go"
)

// IndexColumn holds the row labels of an exported table. The name matches
// what pandas writes for an unnamed index, so pandas restores it on read.
const IndexColumn = "__index_level_0__"

// emptyColumn names the column of a response that is a bare scalar.
const emptyColumn = "value"

// Request represents a single recorded API request.
// This struct maps to the solaredge_requests database table.
type Request struct {
	// RequestID is the unique identifier for this request
	RequestID int64 `parquet:"request_id,snappy"`

	// Endpoint is the client operation that issued the request
	Endpoint string `parquet:"endpoint,snappy"`

	// SiteID is the site or comma-joined sites queried (nullable)
	SiteID *string `parquet:"site_id,optional,snappy"`

	// URL is the request URL without the API key
	URL string `parquet:"url,snappy"`

	// StatusCode is the HTTP status, 0 when the transport failed
	StatusCode int32 `parquet:"status_code,snappy"`

	// ElapsedMs is the round trip time in milliseconds
	ElapsedMs int64 `parquet:"elapsed_ms,snappy"`

	// RequestedAt is when the request was sent (stored as TIMESTAMP with nanosecond precision)
	RequestedAt time.Time `parquet:"requested_at,snappy"`

	// Failed marks transport errors and non-2xx responses
	Failed bool `parquet:"failed,snappy"`
}

// WriteRequestsParquet writes a slice of Request structs to a Parquet file.
func WriteRequestsParquet(data []Request, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the Request struct tags
	writer := parquet.NewGenericWriter[Request](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRequestRecords converts schema.RequestRecord to Request for Parquet export.
func ConvertRequestRecords(records []schema.RequestRecord) []Request {
	result := make([]Request, len(records))
	for i, record := range records {
		result[i] = Request{
			RequestID:   record.RequestID,
			Endpoint:    record.Endpoint,
			SiteID:      record.SiteID,
			URL:         record.URL,
			StatusCode:  record.StatusCode,
			ElapsedMs:   record.ElapsedMs,
			RequestedAt: record.RequestedAt,
			Failed:      record.Failed,
		}
	}
	return result
}

// TableSchema builds a schema with the index column plus one optional string
// column per table column.
func TableSchema(table *tabular.Table) *parquet.Schema {
	group := parquet.Group{IndexColumn: parquet.String()}
	for _, column := range table.Columns {
		group[columnName(column)] = parquet.Optional(parquet.String())
	}
	return parquet.NewSchema("solaredge", group)
}

// WriteTable writes a tabelized response as Parquet. Every cell is stored as
// its text rendering; nulls stay null.
func WriteTable(w io.Writer, table *tabular.Table) error {
	pqSchema := TableSchema(table)

	indexLeaf, _ := pqSchema.Lookup(IndexColumn)
	leaves := make([]int, len(table.Columns))
	for i, column := range table.Columns {
		leaf, ok := pqSchema.Lookup(columnName(column))
		if !ok {
			return fmt.Errorf("column %q missing from parquet schema", column)
		}
		leaves[i] = leaf.ColumnIndex
	}

	rows := make([]parquet.Row, len(table.Rows))
	for r, cells := range table.Rows {
		row := make(parquet.Row, len(table.Columns)+1)
		row[indexLeaf.ColumnIndex] = parquet.ByteArrayValue([]byte(table.Labels[r])).Level(0, 0, indexLeaf.ColumnIndex)
		for i, cell := range cells {
			col := leaves[i]
			if cell.IsNull() {
				row[col] = parquet.Value{}.Level(0, 0, col)
				continue
			}
			row[col] = parquet.ByteArrayValue([]byte(cell.Text())).Level(0, 1, col)
		}
		rows[r] = row
	}

	writer := parquet.NewWriter(w, pqSchema)
	if _, err := writer.WriteRows(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write rows to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet output: %w", err)
	}
	return nil
}

func columnName(column string) string {
	if column == "" {
		return emptyColumn
	}
	return column
}
