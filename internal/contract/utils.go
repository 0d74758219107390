package contract

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Request outcome labels.
const (
	OKValue          = "OK"
	RedirectValue    = "Redirect"
	ClientErrorValue = "Client Error"
	ServerErrorValue = "Server Error"
	UnknownValue     = "Unknown"
)

// Color variables for console output.
var (
	OKColor          = color.New(color.FgGreen)
	RedirectColor    = color.New(color.FgCyan)
	ClientErrorColor = color.New(color.FgYellow, color.Bold)
	ServerErrorColor = color.New(color.FgRed, color.Bold)
)

// GetPlainLabel returns a plain text label for an HTTP status code.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return ServerErrorValue
	case statusCode >= http.StatusBadRequest:
		return ClientErrorValue
	case statusCode >= http.StatusMultipleChoices:
		return RedirectValue
	case statusCode >= http.StatusOK:
		return OKValue
	default:
		return UnknownValue
	}
}

// GetColorLabel returns a colored text label for console output.
func GetColorLabel(statusCode int) string {
	text := GetPlainLabel(statusCode)

	switch text {
	case OKValue:
		return OKColor.Sprint(text)
	case RedirectValue:
		return RedirectColor.Sprint(text)
	case ClientErrorValue:
		return ClientErrorColor.Sprint(text)
	case ServerErrorValue:
		return ServerErrorColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the timezone cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".solaredge_cache.db"
	}
	return filepath.Join(homeDir, ".solaredge_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for request history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".solaredge_history.db"
	}
	return filepath.Join(homeDir, ".solaredge_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
