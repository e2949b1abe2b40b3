package webdav

import "b2ctail/internal/config"

// NewClientFromConfig builds a client from the [instance] section.
func NewClientFromConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	if err := cfg.RequireInstance(); err != nil {
		return nil, err
	}
	return NewClient(Options{
		BaseURL:  cfg.BaseURL(),
		Path:     cfg.Instance.WebDAVPath,
		Username: cfg.Instance.Username,
		Password: cfg.Instance.Password,
		Token:    cfg.Instance.Token,
		Timeout:  cfg.FetchTimeout(),
		Insecure: cfg.Instance.Insecure,
	})
}
