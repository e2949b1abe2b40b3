package digest

import (
	"strings"

	"b2ctail/internal/logentry"
)

// TruncationMarker is appended to an entry that lost lines.
const TruncationMarker = "\n... (truncated)"

const (
	DefaultMaxLines      = 10
	DefaultMaxTraceLines = 5
)

// Truncate shortens entry. Without a stack trace it keeps the first MaxLines
// lines. With one it keeps every line before the trace plus MaxTraceLines
// trace lines. The marker is appended only when lines were dropped.
func (o Options) Truncate(entry string) string {
	maxLines, maxTrace := o.limits()
	lines := strings.Split(entry, "\n")

	start := logentry.StackTraceStart(lines)
	if start < 0 {
		if len(lines) > maxLines {
			return strings.Join(lines[:maxLines], "\n") + TruncationMarker
		}
		return entry
	}

	end := min(start+maxTrace, len(lines))
	if end == len(lines) {
		return entry
	}
	return strings.Join(lines[:end], "\n") + TruncationMarker
}

func (o Options) limits() (int, int) {
	maxLines, maxTrace := o.MaxLines, o.MaxTraceLines
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if maxTrace <= 0 {
		maxTrace = DefaultMaxTraceLines
	}
	return maxLines, maxTrace
}
