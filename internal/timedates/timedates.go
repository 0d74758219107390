// Package timedates finds date-like strings in decoded responses, parses them
// into instants, and attaches a site time zone to the ones that lack an offset.
package timedates

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/huangsam/solaredge/internal/jsonvalue"
)

// Formats used for request parameters.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// keyHints mark mapping keys whose string values are parsed as dates.
var keyHints = []string{"date", "time"}

// sentinelZone is a zone no response uses. A string parsed in UTC and in
// sentinelZone that lands on two different instants had no offset of its own.
var sentinelZone = time.FixedZone("sentinel", 5*60*60)

// StringToDatetime parses s with loose date semantics. Strings that do not
// parse are returned unchanged as strings. When loc is non-nil a naive result
// is localized to it.
func StringToDatetime(s string, loc *time.Location) jsonvalue.Value {
	t, naive, err := parse(s)
	if err != nil {
		return jsonvalue.StringValue(s)
	}
	v := jsonvalue.InstantValue(t, naive)
	if naive && loc != nil {
		return localize(v, loc)
	}
	return v
}

// parse reports whether s carried no zone of its own. A zone abbreviation
// is resolved through zoneAbbreviations; unknown abbreviations leave the
// wall clock naive.
func parse(s string) (t time.Time, naive bool, err error) {
	defer func() {
		// dateparse panics on some malformed inputs.
		if r := recover(); r != nil {
			t, naive, err = time.Time{}, false, fmt.Errorf("parse %q: %v", s, r)
		}
	}()
	if isEpoch(s) {
		return time.Time{}, false, fmt.Errorf("parse %q: bare epoch", s)
	}
	inUTC, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false, err
	}
	inSentinel, err := dateparse.ParseIn(s, sentinelZone)
	if err != nil {
		return time.Time{}, false, err
	}
	if !inUTC.Equal(inSentinel) {
		return inUTC, true, nil
	}

	// time.Parse gives an abbreviation it cannot resolve a made-up zone at
	// offset zero.
	name, offset := inUTC.Zone()
	if offset != 0 || name == "" || name == "UTC" {
		return inUTC, false, nil
	}
	if known, ok := zoneAbbreviations[strings.ToUpper(name)]; ok {
		return wallClock(inUTC, time.FixedZone(name, known)), false, nil
	}
	return wallClock(inUTC, time.UTC), true, nil
}

// isEpoch reports digit-only strings that dateparse would read as Unix
// seconds, milliseconds, microseconds or nanoseconds.
func isEpoch(s string) bool {
	switch len(s) {
	case 10, 13, 16, 19:
	default:
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// ToDatetime walks v and replaces string values stored under date-like keys
// with parsed instants. Everything else is kept, so running it twice is the
// same as running it once.
func ToDatetime(v jsonvalue.Value) jsonvalue.Value {
	switch v.Kind() {
	case jsonvalue.Sequence:
		items := make([]jsonvalue.Value, len(v.Items()))
		for i, item := range v.Items() {
			items[i] = ToDatetime(item)
		}
		return jsonvalue.SequenceValue(items...)
	case jsonvalue.Mapping:
		m := jsonvalue.NewMap()
		for _, member := range v.Map().Members() {
			value := member.Value
			if value.Kind() == jsonvalue.String {
				if hasKeyHint(member.Key) {
					value = StringToDatetime(value.Str(), nil)
				}
			} else {
				value = ToDatetime(value)
			}
			m.Set(member.Key, value)
		}
		return jsonvalue.MappingValue(m)
	default:
		return v
	}
}

func hasKeyHint(key string) bool {
	lower := strings.ToLower(key)
	for _, hint := range keyHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// SetTimezone walks v and localizes every naive instant to loc. Aware
// instants keep their own offset. A nil loc leaves v untouched.
func SetTimezone(v jsonvalue.Value, loc *time.Location) jsonvalue.Value {
	if loc == nil {
		return v
	}
	switch v.Kind() {
	case jsonvalue.Sequence:
		items := make([]jsonvalue.Value, len(v.Items()))
		for i, item := range v.Items() {
			items[i] = SetTimezone(item, loc)
		}
		return jsonvalue.SequenceValue(items...)
	case jsonvalue.Mapping:
		m := jsonvalue.NewMap()
		for _, member := range v.Map().Members() {
			m.Set(member.Key, SetTimezone(member.Value, loc))
		}
		return jsonvalue.MappingValue(m)
	case jsonvalue.Instant:
		if v.Naive() {
			return localize(v, loc)
		}
		return v
	default:
		return v
	}
}

// HasNaive reports whether v holds at least one naive instant.
func HasNaive(v jsonvalue.Value) bool {
	switch v.Kind() {
	case jsonvalue.Sequence:
		for _, item := range v.Items() {
			if HasNaive(item) {
				return true
			}
		}
	case jsonvalue.Mapping:
		for _, member := range v.Map().Members() {
			if HasNaive(member.Value) {
				return true
			}
		}
	case jsonvalue.Instant:
		return v.Naive()
	}
	return false
}

// localize keeps the wall clock of a naive instant and pins it to loc.
func localize(v jsonvalue.Value, loc *time.Location) jsonvalue.Value {
	return jsonvalue.InstantValue(wallClock(v.Time(), loc), false)
}

// DateStringCurrent formats now as a date, in loc when given.
func DateStringCurrent(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(DateFormat)
}

// DateStringDaysDelta shifts a date string by days.
func DateStringDaysDelta(date string, days int) (string, error) {
	t, err := dateparse.ParseIn(date, time.UTC)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return t.AddDate(0, 0, days).Format(DateFormat), nil
}

// TimeStringCurrent formats now as a date-time, in loc when given.
func TimeStringCurrent(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(DateTimeFormat)
}

// TimeStringSecondsDelta shifts a date-time string by seconds.
func TimeStringSecondsDelta(datetime string, seconds int) (string, error) {
	t, err := dateparse.ParseIn(datetime, time.UTC)
	if err != nil {
		return "", fmt.Errorf("parse time %q: %w", datetime, err)
	}
	return t.Add(time.Duration(seconds) * time.Second).Format(DateTimeFormat), nil
}
