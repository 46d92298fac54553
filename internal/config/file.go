package config

import "time"

// File is the structure of the .pixelaudit YAML configuration file.
// Every field is optional; unset fields leave the current value alone.
type File struct {
	// Concurrency overrides the probe concurrency ceiling.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Timeout overrides the per-probe deadline, e.g. "5s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// IdentifierColumn and URLColumn override the export column names.
	IdentifierColumn string `yaml:"idColumn,omitempty"`
	URLColumn        string `yaml:"urlColumn,omitempty"`

	// Table selects the table of SQLite exports.
	Table string `yaml:"table,omitempty"`

	// Latin1 decodes CSV input as ISO-8859-1.
	Latin1 *bool `yaml:"latin1,omitempty"`

	// Probe holds HTTP probe settings.
	Probe ProbeFile `yaml:"probe,omitempty"`

	// StableOrder orders failed URLs by input row.
	StableOrder *bool `yaml:"stableOrder,omitempty"`
}

// ProbeFile holds the probe section of the config file.
type ProbeFile struct {
	// Proxy is a SOCKS5 proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent is sent with every probe.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Method is GET or HEAD.
	Method string `yaml:"method,omitempty"`

	// MaxRedirects is the redirect limit. Nil keeps the default.
	MaxRedirects *int `yaml:"maxRedirects,omitempty"`

	// Headers are added to every probe, e.g. partner API keys.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Concurrency != 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if f.IdentifierColumn != "" {
		cfg.IdentifierColumn = f.IdentifierColumn
	}
	if f.URLColumn != "" {
		cfg.URLColumn = f.URLColumn
	}
	if f.Table != "" {
		cfg.Table = f.Table
	}
	if f.Latin1 != nil {
		cfg.Latin1 = *f.Latin1
	}
	if f.StableOrder != nil {
		cfg.StableOrder = *f.StableOrder
	}

	if f.Probe.Proxy != "" {
		cfg.ProxyAddress = f.Probe.Proxy
	}
	if f.Probe.UserAgent != "" {
		cfg.UserAgent = f.Probe.UserAgent
	}
	if f.Probe.Method != "" {
		cfg.Method = f.Probe.Method
	}
	if f.Probe.MaxRedirects != nil {
		cfg.MaxRedirects = *f.Probe.MaxRedirects
	}
	if len(f.Probe.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(f.Probe.Headers))
		}
		for k, v := range f.Probe.Headers {
			cfg.Headers[k] = v
		}
	}
}
