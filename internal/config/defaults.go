package config

const (
	defaultConfigPath          = "~/.config/b2ctail/config.toml"
	projectConfigName          = "b2ctail.toml"
	defaultWebDAVPath          = "/on/demandware.servlet/webdav/Sites/Logs/"
	defaultFetchTimeoutSeconds = 30
	defaultPollIntervalMS      = 3000
	defaultDigestMaxEntries    = 5
	defaultDigestMaxLines      = 10
	defaultDigestMaxTraceLines = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// DefaultFilters are the log prefixes watched when none are supplied.
var DefaultFilters = []string{"error-", "customerror-"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Instance: Instance{
			WebDAVPath:          defaultWebDAVPath,
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Tail: Tail{
			Filters:        append([]string(nil), DefaultFilters...),
			PollIntervalMS: defaultPollIntervalMS,
		},
		Digest: Digest{
			Filters:       append([]string(nil), DefaultFilters...),
			MaxEntries:    defaultDigestMaxEntries,
			MaxLines:      defaultDigestMaxLines,
			MaxTraceLines: defaultDigestMaxTraceLines,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
