package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"b2ctail/internal/cartridge"
	"b2ctail/internal/config"
	"b2ctail/internal/digest"
	"b2ctail/internal/logging"
	"b2ctail/internal/pathmap"
	"b2ctail/internal/snapshot"
	"b2ctail/internal/webdav"
)

const defaultEnvFile = ".env"

type commandContext struct {
	configFlag   *string
	envFileFlag  *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, envFileFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		envFileFlag:  envFileFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := c.loadEnvFile(); err != nil {
			c.configErr = err
			return
		}
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loadEnvFile reads --env-file, or .env from the working directory when it
// exists.
func (c *commandContext) loadEnvFile() error {
	if c.envFileFlag != nil && strings.TrimSpace(*c.envFileFlag) != "" {
		return config.LoadEnvFile(strings.TrimSpace(*c.envFileFlag), true)
	}
	return config.LoadEnvFile(defaultEnvFile, false)
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var level string
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, level)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) webdavClient() (*webdav.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return webdav.NewClientFromConfig(cfg)
}

// normalizer resolves cartridge mappings and compiles the rewrite rules.
func (c *commandContext) normalizer(logger *slog.Logger) (*pathmap.Normalizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	mappings, err := cartridge.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		logger.Warn("no cartridges found; paths will not be rewritten",
			logging.String("project_root", cfg.Project.Root),
		)
	} else {
		logger.Debug("cartridge mappings resolved", logging.Int("count", len(mappings)))
	}
	n, err := pathmap.New(mappings, pathmap.Options{Base: cfg.Project.Root, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("compile path rules: %w", err)
	}
	return n, nil
}

// digestService wires the snapshot retriever, normalizer and digest options.
// A failed cartridge lookup leaves the digest without a local path matcher;
// connection settings are only checked when a digest is requested.
func (c *commandContext) digestService() (*digest.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	normalizer, err := c.normalizer(logger)
	if err != nil {
		logger.Warn("cartridge lookup failed; only includeAllLogs digests will return entries", logging.Error(err))
		normalizer = nil
	}
	snapshots := &remoteSnapshots{cmd: c, normalizer: normalizer, logger: logger}
	return digest.NewService(snapshots, normalizer, digest.OptionsFromConfig(cfg), cfg.Digest.Filters, logger), nil
}

// remoteSnapshots builds the webdav client on every request, so a missing or
// incomplete [instance] section is reported in the digest response.
type remoteSnapshots struct {
	cmd        *commandContext
	normalizer *pathmap.Normalizer
	logger     *slog.Logger
}

func (r *remoteSnapshots) Recent(ctx context.Context, filters []string, maxEntries int, normalize bool) ([]snapshot.Stream, error) {
	client, err := r.cmd.webdavClient()
	if err != nil {
		return nil, err
	}
	return snapshot.New(client, r.normalizer, r.logger).Recent(ctx, filters, maxEntries, normalize)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func resolveFilters(cmd *cobra.Command, flagValues, fallback []string) []string {
	if cmd.Flags().Changed("filter") {
		return config.NormalizeFilters(flagValues)
	}
	return config.NormalizeFilters(fallback)
}
