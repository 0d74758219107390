// Package jsonvalue models decoded API responses as an ordered, tagged JSON value.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// All value kinds. Instant is produced by date normalization, never by decoding.
const (
	Null Kind = iota
	Bool
	Number
	String
	Sequence
	Mapping
	Instant
)

// Timestamp layouts used when rendering instants.
const (
	NaiveLayout = "2006-01-02 15:04:05"
	AwareLayout = "2006-01-02 15:04:05 MST-0700"
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	case Instant:
		return "instant"
	default:
		return "unknown"
	}
}

// Value is one of null, boolean, number, string, sequence, mapping or instant.
// The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	s     string // number literal or string contents
	items []Value
	m     *Map
	t     time.Time
	naive bool
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps a number literal, kept verbatim so precision is never lost.
func NumberValue(literal string) Value { return Value{kind: Number, s: literal} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// SequenceValue wraps an ordered list of values.
func SequenceValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Sequence, items: items}
}

// MappingValue wraps an ordered mapping. A nil map becomes an empty one.
func MappingValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: Mapping, m: m}
}

// InstantValue wraps a parsed date or date-time. Naive instants carry no offset;
// their wall clock is stored in UTC until a zone is attached.
func InstantValue(t time.Time, naive bool) Value {
	if naive {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return Value{kind: Instant, t: t, naive: naive}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Number returns the number literal.
func (v Value) Number() string {
	if v.kind != Number {
		return ""
	}
	return v.s
}

// Float parses the number literal.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.s, 64)
	return f, err == nil
}

// Str returns the string payload.
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.s
}

// Items returns the sequence elements.
func (v Value) Items() []Value { return v.items }

// Map returns the mapping payload, nil for other kinds.
func (v Value) Map() *Map { return v.m }

// Time returns the instant payload.
func (v Value) Time() time.Time { return v.t }

// Naive reports whether an instant carries no offset.
func (v Value) Naive() bool { return v.kind == Instant && v.naive }

// Lookup walks nested mappings by key.
func (v Value) Lookup(keys ...string) (Value, bool) {
	cur := v
	for _, k := range keys {
		if cur.kind != Mapping {
			return Value{}, false
		}
		next, ok := cur.m.Get(k)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Text renders a scalar as a table cell. Containers render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.b)
	case Number, String:
		return v.s
	case Instant:
		return v.formatInstant()
	default:
		data, _ := v.MarshalJSON()
		return string(data)
	}
}

// Scalar converts v into a plain Go value for generic encoders.
func (v Value) Scalar() any {
	switch v.kind {
	case Null:
		return nil
	case Bool:
		return v.b
	case Number:
		return json.Number(v.s)
	case String:
		return v.s
	case Instant:
		return v.formatInstant()
	default:
		return json.RawMessage(v.Text())
	}
}

func (v Value) formatInstant() string {
	if v.naive {
		return v.t.Format(NaiveLayout)
	}
	return v.t.Format(AwareLayout)
}

// MarshalJSON encodes v preserving mapping order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		buf.WriteString(v.s)
	case String, Instant:
		s := v.s
		if v.kind == Instant {
			s = v.formatInstant()
		}
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		buf.Write(data)
	case Sequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Mapping:
		buf.WriteByte('{')
		for i, member := range v.m.Members() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(member.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := member.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
