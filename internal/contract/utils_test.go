package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		code  int
		label string
	}{
		{0, UnknownValue},
		{200, OKValue},
		{204, OKValue},
		{302, RedirectValue},
		{403, ClientErrorValue},
		{429, ClientErrorValue},
		{500, ServerErrorValue},
		{503, ServerErrorValue},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, GetPlainLabel(tt.code))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	for _, code := range []int{0, 200, 301, 404, 500} {
		result := GetColorLabel(code)
		// Should contain the plain label
		assert.Contains(t, result, GetPlainLabel(code))
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.json")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	cachePath := GetCacheDBFilePath()
	historyPath := GetHistoryDBFilePath()

	assert.True(t, strings.HasSuffix(cachePath, ".solaredge_cache.db"))
	assert.True(t, strings.HasSuffix(historyPath, ".solaredge_history.db"))
	assert.NotEqual(t, cachePath, historyPath)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1", " true "} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, got, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, got, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
