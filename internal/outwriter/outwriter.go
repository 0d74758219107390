// Package outwriter renders API responses as JSON, tables, CSV, text or Parquet.
package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/huangsam/solaredge/internal/api"
	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/huangsam/solaredge/internal/parquet"
	"github.com/huangsam/solaredge/internal/tabular"
	"github.com/huangsam/solaredge/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ErrUnknownOutput is returned for output formats the writer does not know.
var ErrUnknownOutput = errors.New("unknown output format requested")

// ErrParquetUnavailable is returned when Parquet output is requested for a
// response that has no table.
var ErrParquetUnavailable = errors.New("parquet output needs tabular response data")

// rawFallbackWarning is logged when the requested shape is unavailable.
const rawFallbackWarning = "response data is not available for output formatting, raw response data is provided"

// OutWriter renders responses in the configured format.
type OutWriter struct {
	logger *log.Logger
	width  int
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter(logger *log.Logger) *OutWriter {
	if logger == nil {
		logger = log.Default()
	}
	return &OutWriter{logger: logger}
}

// WithWidth fixes the text table width instead of asking the terminal.
func (ow *OutWriter) WithWidth(width int) *OutWriter {
	ow.width = width
	return ow
}

// WriteResponse renders resp to outputFile, or stdout when it is empty.
// Unknown formats fail before anything is written.
func (ow *OutWriter) WriteResponse(resp *api.Response, mode schema.OutputMode, outputFile string) error {
	mode = schema.OutputMode(strings.ToLower(string(mode)))
	if _, ok := schema.ValidOutputModes[mode]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOutput, mode)
	}

	if mode == schema.ParquetOut {
		if resp.Table == nil {
			return ErrParquetUnavailable
		}
		if outputFile == "" {
			return errors.New("parquet output requires --output-file")
		}
		return writeWithFile(outputFile, func(w io.Writer) error {
			return parquet.WriteTable(w, resp.Table)
		}, "Wrote Parquet")
	}

	return writeWithFile(outputFile, func(w io.Writer) error {
		return ow.render(w, resp, mode)
	}, "Wrote "+strings.ToUpper(string(mode)))
}

// render writes every format except Parquet.
func (ow *OutWriter) render(w io.Writer, resp *api.Response, mode schema.OutputMode) error {
	switch {
	case mode == schema.JSONOut && resp.HasData():
		data, err := resp.Data.MarshalJSON()
		if err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return writeIndentedJSON(w, data)
	case (mode == schema.TableOut || mode == schema.PandasOut) && resp.Table != nil:
		return writeTableJSON(w, resp.Table)
	case mode == schema.CSVOut && resp.Table != nil:
		return writeTableCSV(w, resp.Table)
	case mode == schema.TextOut && resp.Table != nil:
		return writeTableText(w, resp.Table, terminalWidth(ow.width))
	default:
		ow.logger.Warn(rawFallbackWarning)
		_, err := fmt.Fprintln(w, resp.Text)
		return err
	}
}

// writeTableJSON writes {column: {row_label: value}} in table order.
func writeTableJSON(w io.Writer, table *tabular.Table) error {
	columns := jsonvalue.NewMap()
	for j, name := range table.Columns {
		cells := jsonvalue.NewMap()
		for i, label := range table.Labels {
			cells.Set(label, table.Rows[i][j])
		}
		columns.Set(name, jsonvalue.MappingValue(cells))
	}
	data, err := jsonvalue.MappingValue(columns).MarshalJSON()
	if err != nil {
		return fmt.Errorf("error writing table output: %w", err)
	}
	return writeIndentedJSON(w, data)
}

// writeTableCSV writes the row label first, then one column per table column.
func writeTableCSV(w io.Writer, table *tabular.Table) error {
	header := append([]string{""}, table.Columns...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, row := range table.Rows {
			record := make([]string, 0, len(row)+1)
			record = append(record, table.Labels[i])
			for _, cell := range row {
				record = append(record, cell.Text())
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeTableText draws a grid sized to the terminal.
func writeTableText(w io.Writer, table *tabular.Table, termWidth int) error {
	width := maxCellWidthFor(termWidth, len(table.Columns)+1)

	headers := make([]string, 0, len(table.Columns)+1)
	headers = append(headers, "Row")
	for _, name := range table.Columns {
		headers = append(headers, truncateCell(name, width))
	}

	grid := tablewriter.NewWriter(w)
	grid.Header(headers)
	grid.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, table.Labels[i])
		for _, cell := range row {
			record = append(record, truncateCell(cell.Text(), width))
		}
		data = append(data, record)
	}

	if err := grid.Bulk(data); err != nil {
		return err
	}
	if err := grid.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d rows, %d columns\n", len(table.Rows), len(table.Columns))
	return err
}
