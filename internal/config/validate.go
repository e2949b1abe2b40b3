package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Connection details are checked
// separately by RequireInstance so offline commands keep working without them.
func (c *Config) Validate() error {
	if err := c.validateInstance(); err != nil {
		return err
	}
	if err := c.validateTail(); err != nil {
		return err
	}
	if err := c.validateDigest(); err != nil {
		return err
	}
	if err := c.validateProject(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateInstance() error {
	host := c.Instance.Server
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if strings.ContainsAny(host, " /") {
		return fmt.Errorf("instance.server must be a host name, got %q", c.Instance.Server)
	}
	return nil
}

func (c *Config) validateTail() error {
	if c.Tail.PollIntervalMS < 0 {
		return errors.New("tail.poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateDigest() error {
	if c.Digest.MaxTraceLines > c.Digest.MaxLines {
		return fmt.Errorf("digest.max_trace_lines (%d) must not exceed digest.max_lines (%d)", c.Digest.MaxTraceLines, c.Digest.MaxLines)
	}
	return nil
}

func (c *Config) validateProject() error {
	seen := make(map[string]struct{}, len(c.Project.Cartridges))
	for _, entry := range c.Project.Cartridges {
		if entry.Name == "" {
			return fmt.Errorf("project.cartridges: entry with path %q is missing a name", entry.Path)
		}
		if entry.Path == "" {
			return fmt.Errorf("project.cartridges: %q is missing a path", entry.Name)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("project.cartridges: %q declared more than once", entry.Name)
		}
		seen[entry.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
