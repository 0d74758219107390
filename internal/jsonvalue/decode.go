package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrInvalidJSON is returned when a body is not a single well-formed JSON document.
var ErrInvalidJSON = errors.New("invalid JSON")

// Decode parses body into a Value, keeping object keys in document order.
func Decode(body []byte) (Value, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return Value{}, ErrInvalidJSON
	}

	raw, dataType, _, err := jsonparser.Get(body)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return decodeValue(raw, dataType)
}

// MustDecode is Decode for literals in tests and fixtures. It panics on error.
func MustDecode(body string) Value {
	v, err := Decode([]byte(body))
	if err != nil {
		panic(err)
	}
	return v
}

func decodeValue(raw []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.Null:
		return NullValue(), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return BoolValue(b), nil

	case jsonparser.Number:
		return NumberValue(string(raw)), nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return StringValue(s), nil

	case jsonparser.Array:
		items := []Value{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			item, err := decodeValue(value, dt)
			if err != nil {
				inner = err
				return
			}
			items = append(items, item)
		})
		if err == nil {
			err = inner
		}
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return SequenceValue(items...), nil

	case jsonparser.Object:
		m := NewMap()
		err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dt jsonparser.ValueType, _ int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			item, err := decodeValue(value, dt)
			if err != nil {
				return err
			}
			m.Set(k, item)
			return nil
		})
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return MappingValue(m), nil

	default:
		return Value{}, fmt.Errorf("%w: unexpected token %q", ErrInvalidJSON, raw)
	}
}
