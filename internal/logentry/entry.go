// Package logentry finds record boundaries inside raw log text and answers
// the few questions the rest of the tool asks about a single record.
//
// A record starts at a '[' that begins a line. Nothing else about the record
// is parsed.
package logentry

import (
	"regexp"
	"strings"
)

// Marker opens every record.
const Marker = '['

// Split cuts data before every Marker that begins a line. Empty pieces are
// dropped and markers stay attached, so Join(Split(s)) == s. Text before the
// first marker (a record continued from an earlier fetch) is returned as its
// own piece without a marker.
func Split(data string) []string {
	if data == "" {
		return nil
	}
	var entries []string
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != Marker || (i > 0 && data[i-1] != '\n') {
			continue
		}
		if i > start {
			entries = append(entries, data[start:i])
		}
		start = i
	}
	if start < len(data) {
		entries = append(entries, data[start:])
	}
	return entries
}

// Join concatenates entries back into raw text without adding separators.
func Join(entries []string) string {
	return strings.Join(entries, "")
}

// Last returns the final entry of data, or nil when there is none.
func Last(data string) []string {
	entries := Split(data)
	if len(entries) == 0 {
		return nil
	}
	return entries[len(entries)-1:]
}

var severityPattern = regexp.MustCompile(`(?i)\b(?:ERROR|FATAL)\b`)

// HasSeverity reports whether entry carries a whole-word ERROR or FATAL
// marker, ignoring case.
func HasSeverity(entry string) bool {
	return severityPattern.MatchString(entry)
}

var tracePattern = regexp.MustCompile(`^at\s+`)

// StackTraceStart returns the index of the first line that, once trimmed,
// starts with "at" followed by whitespace, or -1.
func StackTraceStart(lines []string) int {
	for i, line := range lines {
		if tracePattern.MatchString(strings.TrimSpace(line)) {
			return i
		}
	}
	return -1
}
