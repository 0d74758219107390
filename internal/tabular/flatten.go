// Package tabular turns nested response values into flat rows and columns.
package tabular

import (
	"strconv"

	"github.com/huangsam/solaredge/internal/jsonvalue"
)

// DefaultSeparator joins path segments of flattened keys.
const DefaultSeparator = "."

// Entry is a single flattened path and its scalar leaf.
type Entry struct {
	Key   string
	Value jsonvalue.Value
}

// FlatMap is an ordered mapping of dotted paths to scalar leaves.
type FlatMap struct {
	entries []Entry
	index   map[string]int
}

// NewFlatMap returns an empty FlatMap.
func NewFlatMap() *FlatMap {
	return &FlatMap{index: make(map[string]int)}
}

// Set records value at key. A repeated key keeps its first position.
func (f *FlatMap) Set(key string, value jsonvalue.Value) {
	if i, ok := f.index[key]; ok {
		f.entries[i].Value = value
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, Entry{Key: key, Value: value})
}

// Get returns the leaf stored at key.
func (f *FlatMap) Get(key string) (jsonvalue.Value, bool) {
	i, ok := f.index[key]
	if !ok {
		return jsonvalue.Value{}, false
	}
	return f.entries[i].Value, true
}

// Entries returns the entries in insertion order.
func (f *FlatMap) Entries() []Entry { return f.entries }

// Len returns the number of leaves.
func (f *FlatMap) Len() int { return len(f.entries) }

// Flatten walks v depth-first and records every scalar leaf under its path.
// Empty sequences and mappings contribute nothing.
func Flatten(v jsonvalue.Value, sep string) *FlatMap {
	flat := NewFlatMap()
	flattenInto(flat, v, "", sep)
	return flat
}

func flattenInto(flat *FlatMap, v jsonvalue.Value, parent, sep string) {
	switch v.Kind() {
	case jsonvalue.Sequence:
		for i, item := range v.Items() {
			flattenInto(flat, item, joinKey(parent, strconv.Itoa(i), sep), sep)
		}
	case jsonvalue.Mapping:
		for _, member := range v.Map().Members() {
			flattenInto(flat, member.Value, joinKey(parent, member.Key, sep), sep)
		}
	default:
		flat.Set(parent, v)
	}
}

func joinKey(parent, segment, sep string) string {
	if parent == "" {
		return segment
	}
	return parent + sep + segment
}
