package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSiteID(t *testing.T) {
	id, err := ResolveSiteID(" 42 ", "7")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	id, err = ResolveSiteID("", "7")
	require.NoError(t, err)
	assert.Equal(t, "7", id)

	_, err = ResolveSiteID("", " ")
	assert.ErrorIs(t, err, ErrMissingSiteID)
	assert.Equal(t, "must provide a site_id value", err.Error())
}

func TestResolveRanges(t *testing.T) {
	now := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)

	dates, err := ResolveDateRange("", "", now, 7)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: "2024-03-03", End: "2024-03-10"}, dates)

	dates, err = ResolveDateRange("", "2024-01-05", now, 7)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-29", dates.Start)

	dates, err = ResolveDateRange("2024-01-01", "2024-01-02", now, 7)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: "2024-01-01", End: "2024-01-02"}, dates)

	_, err = ResolveDateRange("", "yesterday-ish", now, 7)
	assert.Error(t, err)

	times, err := ResolveTimeRange("", "", now, 7)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: "2024-03-03 22:30:00", End: "2024-03-10 22:30:00"}, times)
}
