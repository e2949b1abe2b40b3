package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"b2ctail/internal/testsupport"
)

type cliTestEnv struct {
	store       *testsupport.FakeStore
	configPath  string
	projectRoot string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	projectRoot := filepath.Join(base, "project")
	for _, dir := range []string{homeDir, projectRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"SFCC_SERVER", "SFCC_USERNAME", "SFCC_PASSWORD", "SFCC_TOKEN"} {
		t.Setenv(key, "")
	}
	t.Chdir(projectRoot)

	store := testsupport.NewFakeStore(t)
	configPath := filepath.Join(base, "b2ctail.toml")
	writeTestConfig(t, configPath, store.Server.URL, projectRoot)

	return &cliTestEnv{store: store, configPath: configPath, projectRoot: projectRoot}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIContext(context.Background(), t, args, configPath, &bytes.Buffer{})
}

func runCLIContext(ctx context.Context, t *testing.T, args []string, configPath string, stdout interface {
	Write([]byte) (int, error)
	String() string
}) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stderr bytes.Buffer
	cmd.SetOut(stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path, server, projectRoot string) {
	t.Helper()
	content := fmt.Sprintf(`[instance]
server = %q
username = "tester"
password = "secret"
webdav_path = %q
fetch_timeout_seconds = 5

[tail]
poll_interval_ms = 10

[project]
root = %q

[logging]
level = "error"
`, server, testsupport.LogsPath, projectRoot)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// syncBuffer is a bytes.Buffer safe for a command writing while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
