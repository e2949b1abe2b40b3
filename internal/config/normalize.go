package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeInstance()
	c.Tail.Filters = normalizeFilters(c.Tail.Filters)
	if c.Tail.PollIntervalMS == 0 {
		c.Tail.PollIntervalMS = defaultPollIntervalMS
	}
	c.normalizeDigest()
	if err := c.normalizeProject(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeInstance() {
	if c.Instance.Server == "" {
		if value, ok := os.LookupEnv("SFCC_SERVER"); ok {
			c.Instance.Server = value
		}
	}
	c.Instance.Server = strings.TrimRight(strings.TrimSpace(c.Instance.Server), "/")

	if c.Instance.Username == "" {
		if value, ok := os.LookupEnv("SFCC_USERNAME"); ok {
			c.Instance.Username = value
		}
	}
	c.Instance.Username = strings.TrimSpace(c.Instance.Username)
	if c.Instance.Password == "" {
		if value, ok := os.LookupEnv("SFCC_PASSWORD"); ok {
			c.Instance.Password = value
		}
	}
	c.Instance.Password = strings.TrimSpace(c.Instance.Password)
	if c.Instance.Token == "" {
		if value, ok := os.LookupEnv("SFCC_TOKEN"); ok {
			c.Instance.Token = value
		}
	}
	c.Instance.Token = strings.TrimSpace(c.Instance.Token)

	webdav := strings.TrimSpace(c.Instance.WebDAVPath)
	if webdav == "" {
		webdav = defaultWebDAVPath
	}
	if !strings.HasPrefix(webdav, "/") {
		webdav = "/" + webdav
	}
	if !strings.HasSuffix(webdav, "/") {
		webdav += "/"
	}
	c.Instance.WebDAVPath = webdav
	if c.Instance.FetchTimeoutSeconds < 0 {
		c.Instance.FetchTimeoutSeconds = 0
	}
}

func (c *Config) normalizeDigest() {
	c.Digest.Filters = normalizeFilters(c.Digest.Filters)
	if c.Digest.MaxEntries <= 0 {
		c.Digest.MaxEntries = defaultDigestMaxEntries
	}
	if c.Digest.MaxLines <= 0 {
		c.Digest.MaxLines = defaultDigestMaxLines
	}
	if c.Digest.MaxTraceLines <= 0 {
		c.Digest.MaxTraceLines = defaultDigestMaxTraceLines
	}
}

func (c *Config) normalizeProject() error {
	root := strings.TrimSpace(c.Project.Root)
	if root == "" {
		root = "."
	}
	var err error
	if c.Project.Root, err = expandPath(root); err != nil {
		return fmt.Errorf("project.root: %w", err)
	}

	entries := c.Project.Cartridges[:0]
	for _, entry := range c.Project.Cartridges {
		entry.Name = strings.TrimSpace(entry.Name)
		entry.Path = strings.TrimSpace(entry.Path)
		if entry.Name == "" && entry.Path == "" {
			continue
		}
		if entry.Path != "" && !filepath.IsAbs(entry.Path) && !strings.HasPrefix(entry.Path, "~") {
			entry.Path = filepath.Join(c.Project.Root, entry.Path)
		}
		if entry.Path, err = expandPath(entry.Path); err != nil {
			return fmt.Errorf("project.cartridges[%s].path: %w", entry.Name, err)
		}
		entries = append(entries, entry)
	}
	c.Project.Cartridges = entries
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// NormalizeFilters trims and de-duplicates filter prefixes, falling back to
// DefaultFilters when nothing usable remains.
func NormalizeFilters(filters []string) []string {
	return normalizeFilters(filters)
}

func normalizeFilters(filters []string) []string {
	out := make([]string, 0, len(filters))
	seen := make(map[string]struct{}, len(filters))
	for _, filter := range filters {
		trimmed := strings.TrimSpace(filter)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultFilters...)
	}
	return out
}
