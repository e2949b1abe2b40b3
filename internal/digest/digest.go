package digest

import (
	"context"
	"encoding/json"
	"log/slog"

	"b2ctail/internal/config"
	"b2ctail/internal/logentry"
	"b2ctail/internal/logging"
	"b2ctail/internal/snapshot"
)

// DefaultMaxEntries caps entries per stream when a request leaves it unset.
const DefaultMaxEntries = 5

// Options controls summarization.
type Options struct {
	MaxLines      int
	MaxTraceLines int
	// RequireLocalPath drops entries that mention no local project path.
	RequireLocalPath bool
	// RequireSeverity drops entries without an ERROR or FATAL marker.
	RequireSeverity bool
}

// LocalPathMatcher reports whether an entry mentions a local project path.
type LocalPathMatcher interface {
	HasLocalPath(entry string) bool
}

// LogResult is the digest of one stream.
type LogResult struct {
	LogFile string   `json:"logFile"`
	Entries []string `json:"entries"`
}

// Summarize applies, per stream and in this order: the local path filter,
// truncation, the severity filter and the maxEntries cap. Streams with no
// surviving entries are dropped. A nil matcher matches nothing.
func Summarize(streams []snapshot.Stream, maxEntries int, opts Options, matcher LocalPathMatcher) []LogResult {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	results := make([]LogResult, 0, len(streams))
	for _, stream := range streams {
		entries := make([]string, 0, len(stream.Entries))
		for _, entry := range stream.Entries {
			if opts.RequireLocalPath && (matcher == nil || !matcher.HasLocalPath(entry)) {
				continue
			}
			entry = opts.Truncate(entry)
			if opts.RequireSeverity && !logentry.HasSeverity(entry) {
				continue
			}
			entries = append(entries, entry)
		}
		if len(entries) == 0 {
			continue
		}
		if len(entries) > maxEntries {
			entries = entries[:maxEntries]
		}
		results = append(results, LogResult{LogFile: stream.Name, Entries: entries})
	}
	return results
}

// Request selects what the digest covers.
type Request struct {
	// Filters are stream name prefixes; none selects the service defaults.
	Filters        []string `json:"filters,omitempty"`
	MaxEntries     int      `json:"maxEntries,omitempty"`
	IncludeAllLogs bool     `json:"includeAllLogs,omitempty"`
}

// Response is either a report (Count and Logs) or an Error.
type Response struct {
	Count int         `json:"count"`
	Logs  []LogResult `json:"logs"`
	Error string      `json:"error,omitempty"`
}

// MarshalJSON emits only the error field for failed responses.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	logs := r.Logs
	if logs == nil {
		logs = []LogResult{}
	}
	return json.Marshal(struct {
		Count int         `json:"count"`
		Logs  []LogResult `json:"logs"`
	}{r.Count, logs})
}

// Snapshotter reads recent entries per filter.
type Snapshotter interface {
	Recent(ctx context.Context, filters []string, maxEntries int, normalize bool) ([]snapshot.Stream, error)
}

// Service answers digest requests.
type Service struct {
	snapshots      Snapshotter
	matcher        LocalPathMatcher
	opts           Options
	defaultFilters []string
	logger         *slog.Logger
}

// NewService builds a Service. matcher may be nil, in which case only
// IncludeAllLogs requests return entries.
func NewService(snapshots Snapshotter, matcher LocalPathMatcher, opts Options, defaultFilters []string, logger *slog.Logger) *Service {
	if len(defaultFilters) == 0 {
		defaultFilters = config.DefaultFilters
	}
	return &Service{
		snapshots:      snapshots,
		matcher:        matcher,
		opts:           opts,
		defaultFilters: append([]string(nil), defaultFilters...),
		logger:         logging.NewComponentLogger(logger, "digest"),
	}
}

// OptionsFromConfig maps the [digest] section onto Options. Severity
// filtering is always on.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{RequireSeverity: true}
	if cfg != nil {
		opts.MaxLines = cfg.Digest.MaxLines
		opts.MaxTraceLines = cfg.Digest.MaxTraceLines
	}
	return opts
}

// ErrorLogs builds the digest. It never returns an error; failures are
// reported in Response.Error.
func (s *Service) ErrorLogs(ctx context.Context, req Request) Response {
	maxEntries := req.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	filters := requestFilters(req.Filters)
	if len(filters) == 0 {
		filters = s.defaultFilters
	}

	streams, err := s.snapshots.Recent(ctx, filters, maxEntries, true)
	if err != nil {
		s.logger.Error("digest snapshot failed", logging.Error(err))
		return failed(err)
	}

	opts := s.opts
	opts.RequireLocalPath = !req.IncludeAllLogs
	logs := Summarize(streams, maxEntries, opts, s.matcher)

	count := 0
	for _, l := range logs {
		count += len(l.Entries)
	}
	s.logger.Debug("digest built",
		logging.Int("streams", len(streams)),
		logging.Int("entries", count),
		logging.Bool("include_all_logs", req.IncludeAllLogs),
	)
	return Response{Count: count, Logs: logs}
}

func failed(err error) Response {
	return Response{Error: "Failed to fetch error logs: " + err.Error()}
}

// requestFilters de-duplicates the requested prefixes. An empty prefix is kept
// and matches every stream.
func requestFilters(filters []string) []string {
	out := make([]string, 0, len(filters))
	seen := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
