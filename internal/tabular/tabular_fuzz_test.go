package tabular

import (
	"fmt"
	"testing"

	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
)

// uniformValue builds {"site": {"name": label, "values": [rows x {"v", "parts": [cols x {"w"}]}]}}
// so every sequence at the same level has the same length.
func uniformValue(label string, rows, cols int) jsonvalue.Value {
	values := make([]jsonvalue.Value, rows)
	for i := range values {
		parts := make([]jsonvalue.Value, cols)
		for j := range parts {
			part := jsonvalue.NewMap()
			part.Set("w", jsonvalue.StringValue(fmt.Sprintf("%s/%d/%d", label, i, j)))
			parts[j] = jsonvalue.MappingValue(part)
		}
		row := jsonvalue.NewMap()
		row.Set("v", jsonvalue.NumberValue(fmt.Sprint(i)))
		row.Set("parts", jsonvalue.SequenceValue(parts...))
		values[i] = jsonvalue.MappingValue(row)
	}
	site := jsonvalue.NewMap()
	site.Set("name", jsonvalue.StringValue(label))
	site.Set("values", jsonvalue.SequenceValue(values...))
	root := jsonvalue.NewMap()
	root.Set("site", jsonvalue.MappingValue(site))
	return jsonvalue.MappingValue(root)
}

func leafSet(values []jsonvalue.Value) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if !v.IsNull() {
			set[v.Kind().String()+":"+v.Text()] = struct{}{}
		}
	}
	return set
}

// FuzzFlattenTabelize checks that tabelizing a flattened value with uniform
// sequence lengths keeps every leaf.
func FuzzFlattenTabelize(f *testing.F) {
	f.Add("site", uint8(3), uint8(2))
	f.Add("", uint8(1), uint8(1))
	f.Add("a.0.b", uint8(10), uint8(10))
	f.Add("x", uint8(4), uint8(0))

	f.Fuzz(func(t *testing.T, label string, rows, cols uint8) {
		// Single-digit indices keep digit runs from colliding across levels.
		r, c := int(rows%10)+1, int(cols%11)
		v := uniformValue(label, r, c)

		flat := Flatten(v, DefaultSeparator)
		var leaves []jsonvalue.Value
		for _, e := range flat.Entries() {
			leaves = append(leaves, e.Value)
		}

		table := Tabelize(flat, DefaultSeparator, "site.")
		var cells []jsonvalue.Value
		for _, row := range table.Rows {
			assert.Len(t, row, len(table.Columns))
			cells = append(cells, row...)
		}
		assert.Len(t, table.Labels, table.Len())
		assert.Equal(t, leafSet(leaves), leafSet(cells))
	})
}
