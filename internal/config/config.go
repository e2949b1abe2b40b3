package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Instance describes the remote store that hosts the log directory.
type Instance struct {
	Server              string `toml:"server"`
	Username            string `toml:"username"`
	Password            string `toml:"password"`
	Token               string `toml:"token"`
	WebDAVPath          string `toml:"webdav_path"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
	Insecure            bool   `toml:"insecure"`
}

// Tail contains settings for continuous watch mode.
type Tail struct {
	Filters        []string `toml:"filters"`
	PollIntervalMS int      `toml:"poll_interval_ms"`
	Normalize      bool     `toml:"normalize"`
}

// Digest contains settings for bounded snapshots and digests.
type Digest struct {
	Filters       []string `toml:"filters"`
	MaxEntries    int      `toml:"max_entries"`
	MaxLines      int      `toml:"max_lines"`
	MaxTraceLines int      `toml:"max_trace_lines"`
}

// CartridgeEntry declares a cartridge mapping explicitly instead of relying on discovery.
type CartridgeEntry struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Project locates the local source tree used for path rewriting.
type Project struct {
	Root       string           `toml:"root"`
	Cartridges []CartridgeEntry `toml:"cartridges"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for b2ctail.
//
// Configuration sections by subsystem:
//   - Instance: remote server, credentials, and WebDAV location of the logs
//   - Tail: filter prefixes and polling cadence for watch mode
//   - Digest: caps used by snapshots, digests, and the MCP tool
//   - Project: local project root and optional explicit cartridge mappings
//   - Logging: log format and level
type Config struct {
	Instance Instance `toml:"instance"`
	Tail     Tail     `toml:"tail"`
	Digest   Digest   `toml:"digest"`
	Project  Project  `toml:"project"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment,
// overriding variables that are already set. A missing file is not an error
// unless required is true.
func LoadEnvFile(path string, required bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequireInstance reports whether enough connection details are present to
// reach the remote store.
func (c *Config) RequireInstance() error {
	if strings.TrimSpace(c.Instance.Server) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("instance.server is required. Set SFCC_SERVER or edit %s (create with 'b2ctail config init')", defaultPath)
	}
	if c.Instance.Token == "" && (c.Instance.Username == "" || c.Instance.Password == "") {
		return errors.New("instance credentials are required: set instance.username and instance.password (SFCC_USERNAME/SFCC_PASSWORD) or instance.token (SFCC_TOKEN)")
	}
	return nil
}

// BaseURL returns the scheme and host of the instance, defaulting to https.
func (c *Config) BaseURL() string {
	server := strings.TrimSpace(c.Instance.Server)
	if server == "" || strings.Contains(server, "://") {
		return server
	}
	return "https://" + server
}

// PollInterval returns the delay between tail cycles.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tail.PollIntervalMS) * time.Millisecond
}

// FetchTimeout returns the per-request timeout, or zero when disabled.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Instance.FetchTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
