package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"b2ctail/internal/config"
)

func clearInstanceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SFCC_SERVER", "SFCC_USERNAME", "SFCC_PASSWORD", "SFCC_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvInstance(t *testing.T) {
	clearInstanceEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())
	t.Setenv("SFCC_SERVER", "https://dev01.example.net/")
	t.Setenv("SFCC_USERNAME", "dev@example.com")
	t.Setenv("SFCC_PASSWORD", " secret ")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "b2ctail", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.BaseURL() != "https://dev01.example.net" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL())
	}
	if cfg.Instance.Password != "secret" {
		t.Fatalf("expected trimmed password, got %q", cfg.Instance.Password)
	}
	if err := cfg.RequireInstance(); err != nil {
		t.Fatalf("RequireInstance: %v", err)
	}
	if got := cfg.Tail.Filters; len(got) != 2 || got[0] != "error-" || got[1] != "customerror-" {
		t.Fatalf("unexpected default filters: %v", got)
	}
	if cfg.PollInterval().Seconds() != 3 {
		t.Fatalf("expected 3s poll interval, got %s", cfg.PollInterval())
	}
	if cfg.Digest.MaxLines != 10 || cfg.Digest.MaxTraceLines != 5 || cfg.Digest.MaxEntries != 5 {
		t.Fatalf("unexpected digest defaults: %+v", cfg.Digest)
	}
}

func TestRequireInstanceWithoutServer(t *testing.T) {
	clearInstanceEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	err = cfg.RequireInstance()
	if err == nil || !strings.Contains(err.Error(), "instance.server") {
		t.Fatalf("expected missing server error, got %v", err)
	}
}

func TestLoadFileOverridesAndProjectPaths(t *testing.T) {
	clearInstanceEnv(t)
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := config.Default()
	cfg.Instance.Server = "staging.example.net"
	if cfg.BaseURL() != "https://staging.example.net" {
		t.Fatalf("expected https default, got %q", cfg.BaseURL())
	}
	cfg.Instance.Token = "tok"
	cfg.Tail.Filters = []string{" api- ", "api-", ""}
	cfg.Project.Root = dir
	cfg.Project.Cartridges = []config.CartridgeEntry{{Name: "app_custom", Path: "cartridges/app_custom"}}
	cfg.Logging.Format = "JSON"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "b2ctail.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be used, got %s (exists=%v)", path, resolved, exists)
	}
	if got := loaded.Tail.Filters; len(got) != 1 || got[0] != "api-" {
		t.Fatalf("expected filters de-duplicated, got %v", got)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", loaded.Logging.Format)
	}
	want := filepath.Join(dir, "cartridges", "app_custom")
	if loaded.Project.Cartridges[0].Path != want {
		t.Fatalf("expected cartridge path %q, got %q", want, loaded.Project.Cartridges[0].Path)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"server with path": func(c *config.Config) { c.Instance.Server = "host/path" },
		"trace over lines": func(c *config.Config) { c.Digest.MaxTraceLines = 20 },
		"unnamed mapping":  func(c *config.Config) { c.Project.Cartridges = []config.CartridgeEntry{{Path: "/x"}} },
		"bad level":        func(c *config.Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadEnvFileOverridesEnvironment(t *testing.T) {
	clearInstanceEnv(t)
	t.Setenv("SFCC_SERVER", "old.example.net")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SFCC_SERVER=new.example.net\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	if err := config.LoadEnvFile(path, true); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("SFCC_SERVER"); got != "new.example.net" {
		t.Fatalf("expected override, got %q", got)
	}
	if err := config.LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"), false); err != nil {
		t.Fatalf("optional missing env file should be ignored: %v", err)
	}
	if err := config.LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"), true); err == nil {
		t.Fatal("expected error for required missing env file")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearInstanceEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Instance.WebDAVPath != "/on/demandware.servlet/webdav/Sites/Logs/" {
		t.Fatalf("unexpected webdav path %q", cfg.Instance.WebDAVPath)
	}
}
