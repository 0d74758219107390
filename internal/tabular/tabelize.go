package tabular

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/huangsam/solaredge/internal/jsonvalue"
)

// RowLabelPrefix prefixes the generated row labels.
const RowLabelPrefix = "row_"

// Table is a rectangular view of a flattened response.
// Rows are aligned to Columns and labelled in row-group discovery order.
type Table struct {
	Columns []string
	Labels  []string
	Rows    [][]jsonvalue.Value
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the cells of the named column, or false if it does not exist.
func (t *Table) Column(name string) ([]jsonvalue.Value, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	cells := make([]jsonvalue.Value, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, true
}

// keySplitter derives column names and row-group digits from flattened keys.
type keySplitter struct {
	sep    string
	prefix string
	index  *regexp.Regexp
}

func newKeySplitter(sep, prefix string) *keySplitter {
	quoted := regexp.QuoteMeta(sep)
	return &keySplitter{
		sep:    sep,
		prefix: prefix,
		index:  regexp.MustCompile(quoted + `[0-9]+` + quoted),
	}
}

// split collapses every <sep>digits<sep> run out of key and returns the column
// name with the concatenated digits of the collapsed runs.
func (ks *keySplitter) split(key string) (column, digits string) {
	var b strings.Builder
	for _, match := range ks.index.FindAllString(key, -1) {
		key = strings.ReplaceAll(key, match, ks.sep)
		b.WriteString(strings.ReplaceAll(match, ks.sep, ""))
	}
	if ks.prefix != "" && strings.HasPrefix(key, ks.prefix) {
		key = key[len(ks.prefix):]
	}
	return key, b.String()
}

// Tabelize groups flattened keys into columns and row groups. Cells missing
// from a row group are forward-filled from the preceding group, else null.
func Tabelize(flat *FlatMap, sep, prefixToRemove string) *Table {
	ks := newKeySplitter(sep, prefixToRemove)

	// Pass 1: column names in first-seen order and the row-group key width.
	var columns []string
	seen := make(map[string]struct{})
	depth := 0
	for _, e := range flat.Entries() {
		column, digits := ks.split(e.Key)
		if len(digits) > depth {
			depth = len(digits)
		}
		if _, ok := seen[column]; !ok {
			seen[column] = struct{}{}
			columns = append(columns, column)
		}
	}

	// Pass 2: bucket values by row-group key in discovery order. Keys are
	// left-padded with zeros to depth.
	var order []string
	groups := make(map[string]map[string]jsonvalue.Value)
	for _, e := range flat.Entries() {
		column, digits := ks.split(e.Key)
		key := strings.Repeat("0", depth-len(digits)) + digits
		group, ok := groups[key]
		if !ok {
			group = make(map[string]jsonvalue.Value)
			groups[key] = group
			order = append(order, key)
		}
		group[column] = e.Value
	}

	// Pass 3: emit rows, forward-filling from the previous group.
	table := &Table{Columns: columns}
	previous := map[string]jsonvalue.Value{}
	for i, key := range order {
		group := groups[key]
		row := make([]jsonvalue.Value, len(columns))
		for j, column := range columns {
			value, ok := group[column]
			if !ok {
				value = previous[column] // zero Value is null
				group[column] = value
			}
			row[j] = value
		}
		table.Labels = append(table.Labels, fmt.Sprintf("%s%d", RowLabelPrefix, i))
		table.Rows = append(table.Rows, row)
		previous = group
	}
	return table
}

// FromValue flattens and tabelizes v with the default separator.
func FromValue(v jsonvalue.Value, prefixToRemove string) *Table {
	return Tabelize(Flatten(v, DefaultSeparator), DefaultSeparator, prefixToRemove)
}
