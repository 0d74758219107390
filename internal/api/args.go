package api

import (
	"strings"
	"time"

	"github.com/huangsam/solaredge/internal/timedates"
)

// ResolveSiteID picks the given site ID, else the configured one.
func ResolveSiteID(given, configured string) (string, error) {
	if id := strings.TrimSpace(given); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(configured); id != "" {
		return id, nil
	}
	return "", ErrMissingSiteID
}

// Range is a start/end pair formatted for request parameters.
type Range struct {
	Start string
	End   string
}

// ResolveDateRange fills missing dates: end defaults to today and start to
// lookbackDays before end.
func ResolveDateRange(start, end string, now time.Time, lookbackDays int) (Range, error) {
	if end == "" {
		end = timedates.DateStringCurrent(now, nil)
	}
	if start == "" {
		var err error
		if start, err = timedates.DateStringDaysDelta(end, -lookbackDays); err != nil {
			return Range{}, err
		}
	}
	return Range{Start: start, End: end}, nil
}

// ResolveTimeRange fills missing date-times: end defaults to now and start
// to lookbackDays before end.
func ResolveTimeRange(start, end string, now time.Time, lookbackDays int) (Range, error) {
	if end == "" {
		end = timedates.TimeStringCurrent(now, nil)
	}
	if start == "" {
		var err error
		if start, err = timedates.TimeStringSecondsDelta(end, -lookbackDays*24*60*60); err != nil {
			return Range{}, err
		}
	}
	return Range{Start: start, End: end}, nil
}
