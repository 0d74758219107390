package outwriter

import (
	"os"

	"golang.org/x/term"
)

const (
	defaultTermWidth = 80 // CI and pipes
	minCellWidth     = 8
	maxCellWidth     = 40
)

// terminalWidth returns the override when set, else the stdout width.
func terminalWidth(override int) int {
	if override > 0 {
		return override
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return defaultTermWidth
	}
	return detected
}

// maxCellWidthFor splits the terminal width across columns.
func maxCellWidthFor(termWidth, columns int) int {
	if columns <= 0 {
		return maxCellWidth
	}
	// Borders and padding take about three characters per column
	available := (termWidth - 3*columns - 1) / columns
	return min(max(available, minCellWidth), maxCellWidth)
}

// truncateCell shortens s to width runes, marking the cut with "...".
func truncateCell(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
