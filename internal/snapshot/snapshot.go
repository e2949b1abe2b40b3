// Package snapshot reads the most recent entries of the newest stream per
// filter in a single pass, without tracking offsets.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"b2ctail/internal/logentry"
	"b2ctail/internal/logging"
	"b2ctail/internal/webdav"
)

// DefaultMaxEntries is used when the caller passes a non-positive limit.
const DefaultMaxEntries = 50

// Source lists and fetches remote log files.
type Source interface {
	List(ctx context.Context) ([]webdav.LogFile, error)
	Fetch(ctx context.Context, name string, offset int64) ([]byte, error)
}

// Normalizer rewrites entries in place and reports how many mappings it holds.
type Normalizer interface {
	Normalize(entries []string) []string
	Len() int
}

// Stream is the tail end of one remote log file.
type Stream struct {
	Name    string   `json:"logName"`
	Entries []string `json:"entries"`
}

// Retriever produces snapshots. It holds no per-stream state.
type Retriever struct {
	source     Source
	normalizer Normalizer
	logger     *slog.Logger
}

// New builds a Retriever. normalizer may be nil.
func New(source Source, normalizer Normalizer, logger *slog.Logger) *Retriever {
	return &Retriever{
		source:     source,
		normalizer: normalizer,
		logger:     logging.NewComponentLogger(logger, "snapshot"),
	}
}

// Recent returns up to maxEntries trailing entries of the newest stream
// matching each filter, in filter order. A listing failure is returned; a
// stream that cannot be fetched is logged and left out.
func (r *Retriever) Recent(ctx context.Context, filters []string, maxEntries int, normalize bool) ([]Stream, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	files, err := r.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	var streams []Stream
	for _, filter := range filters {
		matches := webdav.Matching(files, filter)
		if len(matches) == 0 {
			continue
		}
		webdav.SortNewestFirst(matches)
		name := matches[0].Name

		data, err := r.source.Fetch(ctx, name, 0)
		if err != nil {
			r.logger.Error("fetch log failed",
				logging.String(logging.FieldStream, name),
				logging.String(logging.FieldFilter, filter),
				logging.Error(err),
			)
			continue
		}
		entries := logentry.Split(string(data))
		if len(entries) > maxEntries {
			entries = entries[len(entries)-maxEntries:]
		}
		if len(entries) == 0 {
			continue
		}
		if normalize && r.normalizer != nil && r.normalizer.Len() > 0 {
			entries = r.normalizer.Normalize(entries)
		}
		streams = append(streams, Stream{Name: name, Entries: entries})
	}
	return streams, nil
}
