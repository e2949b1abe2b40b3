package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"b2ctail/internal/testsupport"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Instance: "+env.store.Server.URL)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestCommandsRequireServer(t *testing.T) {
	setupCLITestEnv(t)
	empty := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(empty, []byte("[logging]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, []string{"logs"}, empty)
	if err == nil || !strings.Contains(err.Error(), "SFCC_SERVER") {
		t.Fatalf("expected missing server error, got %v", err)
	}
}

func TestEnvFileSuppliesCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	env.store.Put("error-a.log", "[1] ERROR a\n", t0)
	bare := filepath.Join(t.TempDir(), "bare.toml")
	if err := os.WriteFile(bare, []byte("[instance]\nwebdav_path = \""+testsupport.LogsPath+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(t.TempDir(), "creds.env")
	content := "SFCC_SERVER=" + env.store.Server.URL + "\nSFCC_USERNAME=tester\nSFCC_PASSWORD=secret\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"--env-file", envFile, "logs"}, bare)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "error-a.log")
}

func TestLogsCommandListsNewestFirst(t *testing.T) {
	env := setupCLITestEnv(t)
	env.store.Put("error-old.log", "", t0.Add(-time.Hour))
	env.store.Put("error-new.log", "", t0)
	env.store.Put("debug-x.log", "", t0)
	env.store.AddDir("deprecation")

	out, _, err := runCLI(t, []string{"logs", "--json", "-f", "error-"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	var files []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &files); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(files) != 2 || files[0].Name != "error-new.log" || files[1].Name != "error-old.log" {
		t.Fatalf("unexpected files %+v", files)
	}

	out, _, err = runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs table: %v", err)
	}
	requireContains(t, out, "debug-x.log")
	requireContains(t, out, "LAST MODIFIED")
	if strings.Contains(out, "deprecation") {
		t.Fatalf("directories must not be listed: %s", out)
	}
}

func TestRecentCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.MakeCartridge(t, env.projectRoot, "cartridges/app_storefront")
	env.store.Put("error-a.log", "[1] ERROR one\n[2] ERROR two\n[3] ERROR three\n\tat app_storefront/cartridge/x.js:1\n", t0)

	out, _, err := runCLI(t, []string{"recent", "--json", "-n", "2", "-f", "error-"}, env.configPath)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	var streams []struct {
		LogName string   `json:"logName"`
		Entries []string `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &streams); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(streams) != 1 || len(streams[0].Entries) != 2 {
		t.Fatalf("unexpected streams %+v", streams)
	}
	requireContains(t, streams[0].Entries[1], "at cartridges/app_storefront/cartridge/x.js:1")

	out, _, err = runCLI(t, []string{"recent", "--no-normalize", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("recent text: %v", err)
	}
	requireContains(t, out, "-----------------\nerror-a.log\n-----------------\n[3] ERROR three\n\tat app_storefront/cartridge/x.js:1\n")
}

func TestDigestCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.MakeCartridge(t, env.projectRoot, "cartridges/app_storefront")
	env.store.Put("error-a.log",
		"[1] ERROR local\n\tat app_storefront/cartridge/controllers/Cart.js:3\n"+
			"[2] ERROR platform only\n", t0)

	out, _, err := runCLI(t, []string{"digest"}, env.configPath)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	var resp struct {
		Count int `json:"count"`
		Logs  []struct {
			LogFile string   `json:"logFile"`
			Entries []string `json:"entries"`
		} `json:"logs"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Count != 1 || resp.Logs[0].LogFile != "error-a.log" {
		t.Fatalf("unexpected digest %s", out)
	}

	out, _, err = runCLI(t, []string{"digest", "--all"}, env.configPath)
	if err != nil {
		t.Fatalf("digest --all: %v", err)
	}
	requireContains(t, out, `"count": 2`)

	env.store.FailList(http.StatusUnauthorized)
	out, _, err = runCLI(t, []string{"digest"}, env.configPath)
	if err != nil {
		t.Fatalf("digest must not fail: %v", err)
	}
	requireContains(t, out, `"error": "Failed to fetch error logs: `)
}

func TestCartridgesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.MakeCartridge(t, env.projectRoot, "cartridges/app_storefront")
	testsupport.MakeCartridge(t, env.projectRoot, "node_modules/ignored")

	out, _, err := runCLI(t, []string{"cartridges"}, env.configPath)
	if err != nil {
		t.Fatalf("cartridges: %v", err)
	}
	requireContains(t, out, "app_storefront")
	requireContains(t, out, "cartridges/app_storefront")
	if strings.Contains(out, "ignored") {
		t.Fatalf("node_modules should be skipped: %s", out)
	}
}

func TestTailCommandFollowsAppends(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.MakeCartridge(t, env.projectRoot, "cartridges/app_storefront")
	env.store.Put("error-a.log", "[1] ERROR first\n[2] ERROR second\n", t0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stdout := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		_, _, err := runCLIContext(ctx, t, []string{"watch", "--task", "-f", "error-"}, env.configPath, stdout)
		done <- err
	}()

	waitFor(t, 5*time.Second, func() bool { return strings.Contains(stdout.String(), "[2] ERROR second") })
	if strings.Contains(stdout.String(), "[1] ERROR first") {
		t.Fatalf("bootstrap should print only the last entry: %s", stdout.String())
	}

	env.store.Append("error-a.log", "[3] ERROR third\n\tat app_storefront/cartridge/y.js:9\n")
	waitFor(t, 5*time.Second, func() bool {
		return strings.Contains(stdout.String(), "at cartridges/app_storefront/cartridge/y.js:9")
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("tail returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tail did not stop after cancellation")
	}
}

func TestDigestReportsMissingInstance(t *testing.T) {
	setupCLITestEnv(t)
	empty := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(empty, []byte("[logging]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"digest"}, empty)
	if err != nil {
		t.Fatalf("digest must report instance errors in its output: %v", err)
	}
	requireContains(t, out, `"error": "Failed to fetch error logs: instance.server is required`)
}
