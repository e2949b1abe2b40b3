package tail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"b2ctail/internal/logentry"
	"b2ctail/internal/logging"
	"b2ctail/internal/webdav"
)

// DefaultInterval is the pause between two cycles.
const DefaultInterval = 3 * time.Second

// Source lists and fetches remote log files.
type Source interface {
	List(ctx context.Context) ([]webdav.LogFile, error)
	Fetch(ctx context.Context, name string, offset int64) ([]byte, error)
}

// Normalizer rewrites entries in place.
type Normalizer interface {
	Normalize(entries []string) []string
}

// Block is the set of entries fetched from one stream in one cycle.
type Block struct {
	Stream  string
	Entries []string
}

// Sink receives emitted blocks.
type Sink interface {
	Emit(Block) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Block) error

func (f SinkFunc) Emit(b Block) error { return f(b) }

// Options configures a Tailer.
type Options struct {
	Interval time.Duration
	// Normalizer is optional; nil leaves entries untouched.
	Normalizer Normalizer
	Logger     *slog.Logger
}

// Tailer polls a Source and forwards new entries to a Sink.
type Tailer struct {
	source     Source
	sink       Sink
	normalizer Normalizer
	interval   time.Duration
	logger     *slog.Logger
	offsets    *Offsets
}

// New builds a Tailer with a fresh offset tracker.
func New(source Source, sink Sink, opts Options) *Tailer {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tailer{
		source:     source,
		sink:       sink,
		normalizer: opts.Normalizer,
		interval:   interval,
		logger:     logging.NewComponentLogger(opts.Logger, "tail"),
		offsets:    NewOffsets(),
	}
}

// Offsets exposes the tracker owned by this Tailer.
func (t *Tailer) Offsets() *Offsets {
	return t.offsets
}

// Run repeats Cycle until ctx is done. A failed cycle is logged and the loop
// carries on after the usual pause. Cancellation is observed between cycles
// only, so a cycle that has started runs to completion.
func (t *Tailer) Run(ctx context.Context, filters []string) error {
	if len(filters) == 0 {
		return errors.New("tail: at least one filter is required")
	}
	t.logger.Info("tail started",
		logging.String("filters", strings.Join(filters, ",")),
		logging.String("interval", t.interval.String()),
	)
	cycleCtx := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			t.logger.Info("tail stopped", logging.Int("streams", t.offsets.Len()))
			return nil
		}
		if err := t.Cycle(cycleCtx, filters); err != nil {
			t.logger.Error("tail cycle failed", logging.Error(err))
		}
		timer := time.NewTimer(t.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Cycle lists the directory once and processes every filter in order.
func (t *Tailer) Cycle(ctx context.Context, filters []string) error {
	files, err := t.source.List(ctx)
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}
	for _, filter := range filters {
		if err := t.follow(ctx, files, filter); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tailer) follow(ctx context.Context, files []webdav.LogFile, filter string) error {
	target, ok := latest(webdav.Matching(files, filter))
	if !ok {
		t.logger.Debug("no stream matches filter", logging.String(logging.FieldFilter, filter))
		return nil
	}
	name := target.Name
	logger := t.logger.With(logging.String(logging.FieldStream, name))

	if offset, seen := t.offsets.Get(name); seen {
		data, err := t.source.Fetch(ctx, name, offset)
		if errors.Is(err, webdav.ErrRangeNotSatisfiable) {
			logger.Debug("no new bytes", logging.Int64("offset", offset))
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch %s: %w", name, err)
		}
		entries := logentry.Split(string(data))
		next := t.offsets.Advance(name, int64(len(data)))
		logger.Debug("fetched range",
			logging.Int64("offset", offset),
			logging.Int("bytes", len(data)),
			logging.Int64("next_offset", next),
		)
		return t.emit(name, data, entries)
	}

	data, err := t.source.Fetch(ctx, name, 0)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	entries := logentry.Last(string(data))
	t.offsets.Set(name, int64(len(data)))
	logger.Info("following stream", logging.Int("bytes", len(data)))
	return t.emit(name, data, entries)
}

func (t *Tailer) emit(name string, data []byte, entries []string) error {
	if len(data) == 0 || len(entries) == 0 {
		return nil
	}
	if t.normalizer != nil {
		entries = t.normalizer.Normalize(entries)
	}
	if err := t.sink.Emit(Block{Stream: name, Entries: entries}); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	return nil
}

// latest picks the most recently modified file. Among equal timestamps the
// one listed last wins.
func latest(files []webdav.LogFile) (webdav.LogFile, bool) {
	if len(files) == 0 {
		return webdav.LogFile{}, false
	}
	sorted := append([]webdav.LogFile(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastModified.Before(sorted[j].LastModified)
	})
	return sorted[len(sorted)-1], true
}
