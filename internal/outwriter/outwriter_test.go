package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/huangsam/solaredge/internal/api"
	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/huangsam/solaredge/internal/tabular"
	"github.com/huangsam/solaredge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const energyJSON = `{"energy":{"unit":"Wh","values":[{"date":"2020-01-01","value":1.5},{"date":"2020-01-02","value":null}]}}`

func energyResponse(t *testing.T) *api.Response {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(energyJSON))
	require.NoError(t, err)
	return &api.Response{
		StatusCode: 200,
		Text:       energyJSON,
		Data:       &v,
		Table:      tabular.FromValue(v, "energy."),
	}
}

func quietWriter(logs io.Writer) *OutWriter {
	return NewOutWriter(log.New(logs)).WithWidth(120)
}

func TestWriteResponseUnknownFormat(t *testing.T) {
	ow := quietWriter(io.Discard)
	out := filepath.Join(t.TempDir(), "out.xml")

	err := ow.WriteResponse(energyResponse(t), "xml", out)
	require.ErrorIs(t, err, ErrUnknownOutput)
	assert.Equal(t, "unknown output format requested: xml", err.Error())

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for unknown formats")
}

func TestWriteResponseParquetWithoutTable(t *testing.T) {
	ow := quietWriter(io.Discard)
	out := filepath.Join(t.TempDir(), "raw.parquet")

	resp := &api.Response{StatusCode: 200, Text: "<html>maintenance</html>"}
	err := ow.WriteResponse(resp, schema.ParquetOut, out)
	require.ErrorIs(t, err, ErrParquetUnavailable)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "raw text never lands in a parquet file")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, quietWriter(io.Discard).render(&buf, energyResponse(t), schema.JSONOut))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n  \"energy\": {\n    \"unit\": \"Wh\""), out)
	assert.Contains(t, out, `"value": 1.5`)
	assert.Less(t, strings.Index(out, `"unit"`), strings.Index(out, `"values"`), "document order is kept")
}

func TestRenderTableJSON(t *testing.T) {
	for _, mode := range []schema.OutputMode{schema.TableOut, schema.PandasOut} {
		t.Run(string(mode), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, quietWriter(io.Discard).render(&buf, energyResponse(t), mode))

			parsed := jsonvalue.MustDecode(buf.String())
			assert.Equal(t, []string{"unit", "values.date", "values.value"}, parsed.Map().Keys())

			unit, ok := parsed.Lookup("unit", "row_1")
			require.True(t, ok)
			assert.Equal(t, "Wh", unit.Str(), "forward filled")

			value, ok := parsed.Lookup("values.value", "row_1")
			require.True(t, ok)
			assert.True(t, value.IsNull())
		})
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, quietWriter(io.Discard).render(&buf, energyResponse(t), schema.CSVOut))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"", "unit", "values.date", "values.value"},
		{"row_0", "Wh", "2020-01-01", "1.5"},
		{"row_1", "Wh", "2020-01-02", ""},
	}, records)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, quietWriter(io.Discard).render(&buf, energyResponse(t), schema.TextOut))

	out := buf.String()
	assert.Contains(t, out, "row_0")
	assert.Contains(t, out, "2020-01-02")
	assert.Contains(t, out, "Showing 2 rows, 3 columns")
}

func TestRenderRawFallback(t *testing.T) {
	var logs bytes.Buffer
	resp := &api.Response{StatusCode: 502, Text: "<html>bad gateway</html>"}

	for _, mode := range []schema.OutputMode{schema.JSONOut, schema.CSVOut, schema.TextOut} {
		t.Run(string(mode), func(t *testing.T) {
			logs.Reset()
			var buf bytes.Buffer
			require.NoError(t, quietWriter(&logs).render(&buf, resp, mode))
			assert.Equal(t, "<html>bad gateway</html>\n", buf.String())
			assert.Contains(t, logs.String(), "raw response data is provided")
		})
	}
}

func TestWriteResponseToFile(t *testing.T) {
	dir := t.TempDir()
	ow := quietWriter(io.Discard)

	csvFile := filepath.Join(dir, "energy.csv")
	require.NoError(t, ow.WriteResponse(energyResponse(t), "CSV", csvFile))
	data, err := os.ReadFile(csvFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), ",unit,values.date,values.value\n"))

	parquetFile := filepath.Join(dir, "energy.parquet")
	require.NoError(t, ow.WriteResponse(energyResponse(t), schema.ParquetOut, parquetFile))
	info, err := os.Stat(parquetFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	err = ow.WriteResponse(energyResponse(t), schema.ParquetOut, "")
	assert.Error(t, err)
}

func TestValueResponse(t *testing.T) {
	m := jsonvalue.NewMap()
	m.Set("siteId", jsonvalue.StringValue("1"))
	m.Set("timeZone", jsonvalue.StringValue("Europe/Rome"))

	var buf bytes.Buffer
	require.NoError(t, quietWriter(io.Discard).render(&buf, api.ValueResponse(jsonvalue.MappingValue(m)), schema.CSVOut))
	assert.Equal(t, ",siteId,timeZone\nrow_0,1,Europe/Rome\n", buf.String())
}

func TestCellWidth(t *testing.T) {
	assert.Equal(t, maxCellWidth, maxCellWidthFor(400, 2))
	assert.Equal(t, minCellWidth, maxCellWidthFor(40, 10))
	assert.Equal(t, maxCellWidth, maxCellWidthFor(80, 0))

	assert.Equal(t, "abc", truncateCell("abc", 8))
	assert.Equal(t, "abcde...", truncateCell("abcdefghijk", 8))
	assert.Equal(t, "ab", truncateCell("abcdef", 2))
	assert.Equal(t, 120, terminalWidth(120))
}
