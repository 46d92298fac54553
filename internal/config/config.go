package config

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pixelaudit"

	// DefaultConcurrency is the number of probes in flight at once.
	// Thirty keeps a laptop's file descriptors and most pixel CDNs happy.
	DefaultConcurrency = 30

	// DefaultTimeout bounds each probe. Pixel servers answer in well under
	// a second; ten seconds separates slow from dead.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the auditor in pixel server logs.
	DefaultUserAgent = "pixelaudit/1.0 (+https://github.com/nao1215/pixelaudit)"

	// DefaultIdentifierColumn is the campaign identifier column of the export.
	DefaultIdentifierColumn = "tactic_id"

	// DefaultURLColumn is the pixel URL list column of the export.
	DefaultURLColumn = "impression_pixel_json"

	// DefaultMaxRedirects is the number of redirects a probe follows.
	DefaultMaxRedirects = 10

	// DefaultMethod is the HTTP method used for probes.
	DefaultMethod = http.MethodGet
)

// Config holds all options of an audit run.
// It is populated from defaults, the config file, the environment and CLI
// flags, then passed down explicitly.
type Config struct {
	// InputFile is the CSV or SQLite export to audit.
	InputFile string

	// Table selects the table of a SQLite export. Empty means the only table.
	Table string

	// Latin1 decodes CSV input as ISO-8859-1.
	Latin1 bool

	// IdentifierColumn groups failures in the report.
	IdentifierColumn string

	// URLColumn holds the JSON list of pixel URLs.
	URLColumn string

	// Concurrency is the ceiling on simultaneously outstanding probes.
	Concurrency int

	// Timeout is the deadline of each individual probe.
	Timeout time.Duration

	// ProxyAddress routes probes through a SOCKS5 proxy ("host:port").
	// Empty means direct connections.
	ProxyAddress string

	// UserAgent is sent with every probe.
	UserAgent string

	// Method is GET or HEAD.
	Method string

	// MaxRedirects is how many redirects a probe follows.
	MaxRedirects int

	// Headers are added to every probe.
	Headers map[string]string

	// StableOrder lists failed URLs in input row order rather than in the
	// order the probes finished.
	StableOrder bool

	// Progress prints a progress line to stderr while probing.
	Progress bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport selects JSON output.
	JSONReport bool

	// JSONEnvelope wraps JSON output with version and run metadata.
	JSONEnvelope bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit config file. Empty means search.
	ConfigFilePath string

	// EnvFile is the .env file read for PIXELAUDIT_* overrides.
	EnvFile string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		IdentifierColumn: DefaultIdentifierColumn,
		URLColumn:        DefaultURLColumn,
		Concurrency:      DefaultConcurrency,
		Timeout:          DefaultTimeout,
		UserAgent:        DefaultUserAgent,
		Method:           DefaultMethod,
		MaxRedirects:     DefaultMaxRedirects,
		StableOrder:      true,
		EnvFile:          DefaultEnvFile,
	}
}

// XDGConfigDir returns the XDG config directory for pixelaudit.
// On Linux: ~/.config/pixelaudit
// On macOS: ~/Library/Application Support/pixelaudit
// On Windows: %APPDATA%\pixelaudit
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once, before any row is read.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return ErrNoInput
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if strings.TrimSpace(c.IdentifierColumn) == "" || strings.TrimSpace(c.URLColumn) == "" {
		return ErrEmptyColumn
	}
	if c.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}
	switch strings.ToUpper(c.Method) {
	case http.MethodGet, http.MethodHead:
	default:
		return ErrInvalidMethod
	}
	return nil
}
