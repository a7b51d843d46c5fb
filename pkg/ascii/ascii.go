// Package ascii provides utilities for boxed and tabular terminal output
package ascii

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Box builds a box containing the provided lines and returns it as a string.
// Lines are left-aligned with single-space padding on each side. Multi-width
// runes (emoji, CJK, etc.) are accounted for so the borders stay aligned.
func Box(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	trimmed := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " ")
		if w := StringWidth(trimmed[i]); w > maxWidth {
			maxWidth = w
		}
	}

	innerWidth := maxWidth + 2
	border := strings.Repeat("─", innerWidth)

	var sb strings.Builder
	sb.WriteString("┌" + border + "┐\n")
	for _, line := range trimmed {
		sb.WriteString("│ " + runewidth.FillRight(line, maxWidth) + " │\n")
	}
	sb.WriteString("└" + border + "┘\n")
	return sb.String()
}

// Table renders rows under a header with columns padded to their widest
// cell. Cells wider than maxCell are truncated with "..."; maxCell <= 0
// disables truncation. Trailing padding is trimmed from every line.
func Table(headers []string, rows [][]string, maxCell int) string {
	widths := make([]int, len(headers))
	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		if maxCell > 0 {
			return Truncate(row[i], maxCell)
		}
		return row[i]
	}

	for i, h := range headers {
		widths[i] = StringWidth(h)
	}
	for _, row := range rows {
		for i := range headers {
			if w := StringWidth(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(values func(i int) string) {
		var line strings.Builder
		for i := range headers {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(runewidth.FillRight(values(i), widths[i]))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}

	writeRow(func(i int) string { return headers[i] })
	writeRow(func(i int) string { return strings.Repeat("-", widths[i]) })
	for _, row := range rows {
		writeRow(func(i int) string { return cell(row, i) })
	}
	return sb.String()
}

// Truncate shortens a string so that its display width fits within width.
// An ellipsis ("...") is appended when truncation occurs and there is
// space for it.
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// StringWidth returns the display width of a string, accounting for
// multi-width Unicode characters.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}
