package pathmap

import (
	"log/slog"
	"time"

	"github.com/dlclark/regexp2"

	"b2ctail/internal/cartridge"
	"b2ctail/internal/logging"
)

// Options configures a Normalizer.
type Options struct {
	// Base is removed from each mapping's Src to form the local relative path.
	Base         string
	MatchTimeout time.Duration
	Logger       *slog.Logger
}

type mappingRules struct {
	mapping   cartridge.Mapping
	local     string
	rules     []Rule
	detectors []*regexp2.Regexp
}

// Normalizer applies per-mapping rewrite rules to log entries.
type Normalizer struct {
	mappings []mappingRules
	logger   *slog.Logger
}

// New compiles rules for every mapping, preserving mapping order.
func New(mappings []cartridge.Mapping, opts Options) (*Normalizer, error) {
	timeout := opts.MatchTimeout
	if timeout == 0 {
		timeout = DefaultMatchTimeout
	}
	n := &Normalizer{
		mappings: make([]mappingRules, 0, len(mappings)),
		logger:   logging.NewComponentLogger(opts.Logger, "pathmap"),
	}
	for _, m := range mappings {
		local := m.RelativePath(opts.Base)
		rules, err := NewRules(m.Name, local, timeout)
		if err != nil {
			return nil, err
		}
		entry := mappingRules{mapping: m, local: local, rules: rules}
		if local != "" {
			detectors, err := newDetectors(local, timeout)
			if err != nil {
				return nil, err
			}
			entry.detectors = detectors
		}
		n.mappings = append(n.mappings, entry)
	}
	return n, nil
}

// Len reports how many mappings the normalizer knows.
func (n *Normalizer) Len() int {
	if n == nil {
		return 0
	}
	return len(n.mappings)
}

// Normalize rewrites entries in place and returns the same slice. An entry
// whose rewrite fails for a mapping keeps the text it had before that
// mapping; the remaining mappings and entries are still processed.
func (n *Normalizer) Normalize(entries []string) []string {
	if n == nil {
		return entries
	}
	for i, entry := range entries {
		if entry == "" {
			continue
		}
		for _, mr := range n.mappings {
			rewritten, err := rewrite(entry, mr.rules)
			if err != nil {
				n.logger.Error("path rewrite failed; entry left unchanged",
					logging.String(logging.FieldMapping, mr.mapping.Name),
					logging.Int("entry_index", i),
					logging.Error(err),
				)
				n.logger.Debug("unrewritten entry", logging.String("entry", entry))
				continue
			}
			entry = rewritten
		}
		entries[i] = entry
	}
	return entries
}

func rewrite(entry string, rules []Rule) (string, error) {
	out := entry
	for _, rule := range rules {
		next, err := rule.Apply(out)
		if err != nil {
			return entry, err
		}
		out = next
	}
	return out, nil
}

// HasLocalPath reports whether entry mentions any mapping's local path in one
// of the recognised shapes.
func (n *Normalizer) HasLocalPath(entry string) bool {
	if n == nil {
		return false
	}
	for _, mr := range n.mappings {
		for _, d := range mr.detectors {
			ok, err := d.MatchString(entry)
			if err != nil {
				n.logger.Warn("local path detection failed",
					logging.String(logging.FieldMapping, mr.mapping.Name),
					logging.Error(err),
				)
				continue
			}
			if ok {
				return true
			}
		}
	}
	return false
}

// LocalPaths lists the relative local path of every mapping, in order.
func (n *Normalizer) LocalPaths() []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.mappings))
	for _, mr := range n.mappings {
		out = append(out, mr.local)
	}
	return out
}
