package jsonvalue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("preserves key order", func(t *testing.T) {
		v, err := Decode([]byte(`{"b": 1, "a": {"z": true, "y": null}, "c": "x"}`))
		require.NoError(t, err)
		require.Equal(t, Mapping, v.Kind())
		assert.Equal(t, []string{"b", "a", "c"}, v.Map().Keys())

		inner, ok := v.Lookup("a")
		require.True(t, ok)
		assert.Equal(t, []string{"z", "y"}, inner.Map().Keys())
	})

	t.Run("keeps number literals", func(t *testing.T) {
		v, err := Decode([]byte(`[5, 1.50, -2e3]`))
		require.NoError(t, err)
		require.Len(t, v.Items(), 3)
		assert.Equal(t, "5", v.Items()[0].Number())
		assert.Equal(t, "1.50", v.Items()[1].Number())
		f, ok := v.Items()[2].Float()
		assert.True(t, ok)
		assert.Equal(t, -2000.0, f)
	})

	t.Run("unescapes strings and keys", func(t *testing.T) {
		v, err := Decode([]byte(`{"k\"ey": "a\nbé"}`))
		require.NoError(t, err)
		got, ok := v.Lookup(`k"ey`)
		require.True(t, ok)
		assert.Equal(t, "a\nbé", got.Str())
	})

	t.Run("empty containers", func(t *testing.T) {
		v, err := Decode([]byte(`{"list": [], "obj": {}}`))
		require.NoError(t, err)
		list, _ := v.Lookup("list")
		obj, _ := v.Lookup("obj")
		assert.Equal(t, Sequence, list.Kind())
		assert.Empty(t, list.Items())
		assert.Equal(t, 0, obj.Map().Len())
	})

	t.Run("top level scalar", func(t *testing.T) {
		v, err := Decode([]byte(` "hello" `))
		require.NoError(t, err)
		assert.Equal(t, "hello", v.Str())
	})

	t.Run("duplicate keys keep first position", func(t *testing.T) {
		v, err := Decode([]byte(`{"a": 1, "b": 2, "a": 3}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, v.Map().Keys())
		a, _ := v.Lookup("a")
		assert.Equal(t, "3", a.Number())
	})

	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"html", "<html>Not authorized</html>"},
		{"truncated", `{"a": [1, 2`},
		{"trailing data", `{"a": 1} {"b": 2}`},
	}
	for _, tt := range tests {
		t.Run("invalid "+tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			assert.ErrorIs(t, err, ErrInvalidJSON)
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	t.Run("round trips ordered mapping", func(t *testing.T) {
		body := `{"z":1,"a":[true,null,"s"],"m":{"y":2.0,"x":{}}}`
		v := MustDecode(body)
		data, err := v.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, body, string(data))
	})

	t.Run("renders instants", func(t *testing.T) {
		loc, err := time.LoadLocation("Australia/Sydney")
		require.NoError(t, err)

		m := NewMap()
		m.Set("naive", InstantValue(time.Date(2020, 1, 1, 8, 30, 0, 0, time.UTC), true))
		m.Set("aware", InstantValue(time.Date(2020, 1, 1, 8, 30, 0, 0, loc), false))

		data, err := MappingValue(m).MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"naive":"2020-01-01 08:30:00","aware":"2020-01-01 08:30:00 AEDT+1100"}`, string(data))
	})
}

func TestValueAccessors(t *testing.T) {
	assert.True(t, NullValue().IsNull())
	assert.Equal(t, "", NullValue().Text())
	assert.Equal(t, "true", BoolValue(true).Text())
	assert.Equal(t, "", StringValue("x").Number())
	assert.Equal(t, "", NumberValue("1").Str())

	naive := InstantValue(time.Date(2021, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600)), true)
	assert.True(t, naive.Naive())
	assert.Equal(t, time.UTC, naive.Time().Location())
	assert.Equal(t, "2021-05-06 07:08:09", naive.Text())

	_, ok := StringValue("x").Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, "mapping", Mapping.String())
	assert.Equal(t, `[1,2]`, MustDecode(`[1, 2]`).Text())
}
