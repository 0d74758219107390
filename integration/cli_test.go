//go:build basic

package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTimezoneCachePersists verifies that the site time zone is looked up
// once and then served from the SQLite cache by later runs.
func TestTimezoneCachePersists(t *testing.T) {
	fake, baseURL := newFakeMonitoring(t)
	env := []string{
		"SOLAREDGE_API_KEY=secret",
		"SOLAREDGE_BASE_URL=" + baseURL,
		"SOLAREDGE_CACHE_DB_CONNECT=" + filepath.Join(t.TempDir(), "cache.db"),
	}

	out, err := runCommand(t, env, "site-overview", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-10 12:00:00 CET+0100")
	assert.Equal(t, 1, fake.count("/site/42/details"))

	out, err = runCommand(t, env, "site-overview", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-10 12:00:00 CET+0100")
	assert.Equal(t, 1, fake.count("/site/42/details"), "second run should use the cached zone")

	out, err = runCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 1")
}

// TestTimezoneCacheOptOut verifies that disabling the cache always looks up the zone.
func TestTimezoneCacheOptOut(t *testing.T) {
	fake, baseURL := newFakeMonitoring(t)
	env := []string{
		"SOLAREDGE_API_KEY=secret",
		"SOLAREDGE_BASE_URL=" + baseURL,
		"SOLAREDGE_TIMEZONE_CACHE=no",
	}

	for range 2 {
		_, err := runCommand(t, env, "site-overview", "42")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fake.count("/site/42/details"))
}

// TestCLIErrors checks the exit status and message of common failures.
func TestCLIErrors(t *testing.T) {
	_, baseURL := newFakeMonitoring(t)

	out, err := runCommand(t, []string{"SOLAREDGE_API_KEY=", "SOLAREDGE_BASE_URL=" + baseURL}, "version-current")
	require.Error(t, err)
	assert.Contains(t, out, "❌ must provide a SolarEdge api_key value")

	out, err = runCommand(t, []string{"SOLAREDGE_API_KEY=secret", "SOLAREDGE_BASE_URL=" + baseURL, "SOLAREDGE_SITE_ID="}, "site-overview")
	require.Error(t, err)
	assert.Contains(t, out, "❌ must provide a site_id value")

	out, err = runCommand(t, []string{"SOLAREDGE_API_KEY=secret", "SOLAREDGE_BASE_URL=" + baseURL}, "version-current", "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, out, "invalid output format")
}

// TestTextOutput renders a table in the terminal format.
func TestTextOutput(t *testing.T) {
	_, baseURL := newFakeMonitoring(t)
	env := []string{"SOLAREDGE_API_KEY=secret", "SOLAREDGE_BASE_URL=" + baseURL}

	out, err := runCommand(t, env, "version-current", "--output", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "release")
	assert.Contains(t, out, "1.0.0")
}
