package timedates

import (
	"testing"
	"time"

	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 10, 22, 30, 0, 0, time.UTC)

func sydney(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	return loc
}

func TestStringToDatetime(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKind  jsonvalue.Kind
		wantNaive bool
		wantText  string
	}{
		{"date only", "2020-01-01", jsonvalue.Instant, true, "2020-01-01 00:00:00"},
		{"date time", "2020-01-01 08:30:00", jsonvalue.Instant, true, "2020-01-01 08:30:00"},
		{"rfc3339 offset", "2020-01-01T08:30:00+02:00", jsonvalue.Instant, false, ""},
		{"zone abbreviation", "2020-01-01 10:00:00 CET", jsonvalue.Instant, false, "2020-01-01 10:00:00 CET+0100"},
		{"southern zone abbreviation", "2020-01-01 10:00:00 AEST", jsonvalue.Instant, false, "2020-01-01 10:00:00 AEST+1000"},
		{"unknown abbreviation stays naive", "2020-01-01 10:00:00 IST", jsonvalue.Instant, true, "2020-01-01 10:00:00"},
		{"bare epoch", "1577836800", jsonvalue.String, false, "1577836800"},
		{"not a date", "never", jsonvalue.String, false, "never"},
		{"empty", "", jsonvalue.String, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := StringToDatetime(tt.input, nil)
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantNaive, v.Naive())
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, v.Text())
			}
		})
	}

	t.Run("explicit offset is kept", func(t *testing.T) {
		v := StringToDatetime("2020-01-01T08:30:00+02:00", sydney(t))
		_, offset := v.Time().Zone()
		assert.Equal(t, 2*60*60, offset)
		assert.Equal(t, 8, v.Time().Hour())
	})

	t.Run("abbreviation resolves to its offset", func(t *testing.T) {
		v := StringToDatetime("2020-01-01 10:00:00 CET", sydney(t))
		assert.False(t, v.Naive())
		assert.Equal(t, time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC).Unix(), v.Time().Unix())
	})

	t.Run("unknown abbreviation is localized", func(t *testing.T) {
		v := StringToDatetime("2020-01-01 10:00:00 IST", sydney(t))
		assert.False(t, v.Naive())
		assert.Equal(t, time.Date(2020, 1, 1, 10, 0, 0, 0, sydney(t)).Unix(), v.Time().Unix())
	})

	t.Run("naive is localized when zone given", func(t *testing.T) {
		v := StringToDatetime("2020-01-01 08:30:00", sydney(t))
		assert.False(t, v.Naive())
		assert.Equal(t, time.Date(2020, 1, 1, 8, 30, 0, 0, sydney(t)).Unix(), v.Time().Unix())
	})
}

func TestToDatetime(t *testing.T) {
	input := jsonvalue.MustDecode(`{
		"date1": "2020-01-01",
		"startTime": "2020-01-01 08:30:00",
		"name": "2020-01-01",
		"lastUpdateTime": "soon",
		"timeUnit": 15,
		"values": [{"date": "2020-01-02 00:15:00", "value": 1}],
		"nested": {"installationDate": "2019-05-06"}
	}`)

	out := ToDatetime(input)

	date1, _ := out.Lookup("date1")
	assert.Equal(t, jsonvalue.Instant, date1.Kind())
	assert.True(t, date1.Naive())

	start, _ := out.Lookup("startTime")
	assert.Equal(t, "2020-01-01 08:30:00", start.Text())

	name, _ := out.Lookup("name")
	assert.Equal(t, jsonvalue.String, name.Kind(), "keys without a date hint stay strings")

	last, _ := out.Lookup("lastUpdateTime")
	assert.Equal(t, "soon", last.Str(), "parse misses keep the original string")

	unit, _ := out.Lookup("timeUnit")
	assert.Equal(t, "15", unit.Number())

	inner := out.Map()
	require.NotNil(t, inner)
	values, _ := out.Lookup("values")
	row := values.Items()[0]
	date, _ := row.Lookup("date")
	assert.Equal(t, jsonvalue.Instant, date.Kind())

	installed, _ := out.Lookup("nested", "installationDate")
	assert.Equal(t, jsonvalue.Instant, installed.Kind())

	assert.Equal(t, []string{"date1", "startTime", "name", "lastUpdateTime", "timeUnit", "values", "nested"}, out.Map().Keys())

	t.Run("idempotent", func(t *testing.T) {
		again := ToDatetime(out)
		a, err := out.MarshalJSON()
		require.NoError(t, err)
		b, err := again.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		orig, _ := input.Lookup("date1")
		assert.Equal(t, jsonvalue.String, orig.Kind())
	})
}

func TestSetTimezone(t *testing.T) {
	loc := sydney(t)

	t.Run("naive date gets site offset", func(t *testing.T) {
		out := SetTimezone(ToDatetime(jsonvalue.MustDecode(`{"date1": "2020-01-01"}`)), loc)
		date1, _ := out.Lookup("date1")
		require.Equal(t, jsonvalue.Instant, date1.Kind())
		assert.False(t, date1.Naive())
		assert.Equal(t, "2020-01-01 00:00:00 AEDT+1100", date1.Text())
	})

	t.Run("aware instants pass through", func(t *testing.T) {
		parsed := ToDatetime(jsonvalue.MustDecode(`[{"time": "2020-06-01T10:00:00Z"}]`))
		out := SetTimezone(parsed, loc)
		v, _ := out.Items()[0].Lookup("time")
		_, offset := v.Time().Zone()
		assert.Equal(t, 0, offset)
		assert.Equal(t, 10, v.Time().Hour())
	})

	t.Run("nil zone is a no-op", func(t *testing.T) {
		parsed := ToDatetime(jsonvalue.MustDecode(`{"date": "2020-01-01"}`))
		out := SetTimezone(parsed, nil)
		v, _ := out.Lookup("date")
		assert.True(t, v.Naive())
	})

	t.Run("scalars untouched", func(t *testing.T) {
		out := SetTimezone(jsonvalue.StringValue("2020-01-01"), loc)
		assert.Equal(t, jsonvalue.String, out.Kind())
	})
}

func TestDateStrings(t *testing.T) {
	assert.Equal(t, "2024-03-10", DateStringCurrent(fixedNow, nil))
	assert.Equal(t, "2024-03-11", DateStringCurrent(fixedNow, sydney(t)))
	assert.Equal(t, "2024-03-10 22:30:00", TimeStringCurrent(fixedNow, nil))
	assert.Equal(t, "2024-03-11 09:30:00", TimeStringCurrent(fixedNow, sydney(t)))

	got, err := DateStringDaysDelta("2024-03-10", -7)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", got)

	got, err = TimeStringSecondsDelta("2024-03-10 22:30:00", -7*24*60*60)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03 22:30:00", got)

	_, err = DateStringDaysDelta("not a date", 1)
	assert.Error(t, err)
	_, err = TimeStringSecondsDelta("", 1)
	assert.Error(t, err)
}

func TestHasNaive(t *testing.T) {
	parsed := ToDatetime(jsonvalue.MustDecode(`{"a":[{"endTime":"2020-01-01 10:00:00"}],"b":1}`))
	assert.True(t, HasNaive(parsed))
	assert.False(t, HasNaive(SetTimezone(parsed, sydney(t))))
	assert.False(t, HasNaive(jsonvalue.MustDecode(`{"date":"2020-01-01"}`)), "unparsed strings are not instants")
}
