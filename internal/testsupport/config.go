package testsupport

import (
	"testing"

	"b2ctail/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config pointing at store with test credentials and a
// project root below a unique temp directory.
func NewConfig(t testing.TB, store *FakeStore, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	if store != nil {
		cfg.Instance.Server = store.Server.URL
	}
	cfg.Instance.Username = "tester"
	cfg.Instance.Password = "secret"
	cfg.Instance.WebDAVPath = LogsPath
	cfg.Project.Root = t.TempDir()
	cfg.Tail.PollIntervalMS = 10

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithProjectRoot overrides the local project root.
func WithProjectRoot(root string) ConfigOption {
	return func(c *config.Config) {
		c.Project.Root = root
	}
}
