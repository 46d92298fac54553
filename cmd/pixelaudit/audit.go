package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nao1215/pixelaudit/internal/config"
	"github.com/nao1215/pixelaudit/internal/database"
	"github.com/nao1215/pixelaudit/internal/model"
	"github.com/nao1215/pixelaudit/internal/pipeline"
	"github.com/nao1215/pixelaudit/internal/probe"
	"github.com/nao1215/pixelaudit/internal/report"
	"github.com/nao1215/pixelaudit/internal/source"
	"github.com/spf13/cobra"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <export.csv|export.sqlite>",
		Short: "Check every pixel URL in an export",
		Long: `Audit reads an ad-delivery export, extracts the impression pixel URLs of
every row and requests each of them. URLs answering with a status code of
400 or above, and URLs that do not answer before the timeout, are reported
grouped by the row's campaign identifier.

Files ending in .db, .sqlite or .sqlite3 are read as SQLite exports; .tsv
files as tab-separated; anything else as CSV with a header row.

Examples:
  # Audit a CSV export with the default columns (tactic_id, impression_pixel_json)
  pixelaudit audit impressions.csv

  # Fewer concurrent requests and a shorter timeout
  pixelaudit audit -c 10 -t 5s impressions.csv

  # Read a table of a SQLite export and write a JSON report
  pixelaudit audit --table impressions --json -o report.json export.sqlite

  # Custom column names
  pixelaudit audit --id-column campaign --url-column pixels export.csv

Configuration file (.pixelaudit) example:
  concurrency: 20
  timeout: 5s
  probe:
    headers:
      X-Api-Key: "partner-key"`,
		Args: cobra.ExactArgs(1),
		RunE: runAuditCmd,
	}

	flags := cmd.Flags()

	// Dispatch flags
	flags.IntP("concurrency", "c", config.DefaultConcurrency,
		"Maximum number of pixel requests in flight")
	flags.DurationP("timeout", "t", config.DefaultTimeout,
		"Deadline for each pixel request")

	// Input flags
	flags.String("id-column", config.DefaultIdentifierColumn,
		"Column holding the campaign identifier")
	flags.String("url-column", config.DefaultURLColumn,
		"Column holding the JSON list of pixel URLs")
	flags.String("table", "",
		"Table of a SQLite export (default: the only table)")
	flags.Bool("latin1", false,
		"Decode CSV input as ISO-8859-1")

	// Probe flags
	flags.String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	flags.String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	flags.String("method", config.DefaultMethod,
		"HTTP method: GET or HEAD")
	flags.Int("max-redirects", config.DefaultMaxRedirects,
		"Number of redirects to follow")
	flags.StringToStringP("header", "H", nil,
		"Extra request header, repeatable (e.g. -H X-Api-Key=abc)")

	// Report flags
	flags.Bool("stable-order", true,
		"List failed URLs in input row order instead of completion order")
	flags.BoolP("progress", "p", false,
		"Print a progress counter to stderr while probing")
	flags.BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	flags.Bool("envelope", false,
		"Wrap JSON output with version and run metadata")
	flags.BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	flags.StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Configuration sources
	flags.String("config", "",
		"Configuration file path (default: .pixelaudit in current, XDG config or home directory)")
	flags.String("env-file", config.DefaultEnvFile,
		"File with PIXELAUDIT_* overrides")

	return cmd
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing with partial results")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runAudit(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildConfig layers defaults, the config file, .env and PIXELAUDIT_*
// variables, and finally the flags the user actually set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	if cfg.EnvFile, err = flags.GetString("env-file"); err != nil {
		return nil, err
	}
	if err := config.LoadEnv(cfg); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	if len(args) > 0 {
		cfg.InputFile = args[0]
	}
	return cfg, nil
}

// applyConfigFile loads the config file if one is found. An explicit
// --config path that does not exist is an error; a missing default file
// is not.
func applyConfigFile(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.Apply(cfg)
	return nil
}

// applyFlags copies the explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	ints := map[string]*int{
		"concurrency":   &cfg.Concurrency,
		"max-redirects": &cfg.MaxRedirects,
	}
	for name, dst := range ints {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	strs := map[string]*string{
		"id-column":  &cfg.IdentifierColumn,
		"url-column": &cfg.URLColumn,
		"table":      &cfg.Table,
		"proxy":      &cfg.ProxyAddress,
		"user-agent": &cfg.UserAgent,
		"method":     &cfg.Method,
		"output":     &cfg.ReportFile,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	bools := map[string]*bool{
		"latin1":       &cfg.Latin1,
		"stable-order": &cfg.StableOrder,
		"progress":     &cfg.Progress,
		"json":         &cfg.JSONReport,
		"envelope":     &cfg.JSONEnvelope,
		"markdown":     &cfg.MarkdownReport,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = v
	}

	if flags.Changed("header") {
		headers, err := flags.GetStringToString("header")
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	return nil
}

// runAudit performs one audit. Errors before dispatch abort the run; once
// probing has started the report is always written, even when interrupted.
func runAudit(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) error {
	logger.Info("starting audit",
		"input", cfg.InputFile,
		"concurrency", cfg.Concurrency,
		"timeout", cfg.Timeout,
		"proxy", cfg.ProxyAddress != "",
	)

	if cfg.ProxyAddress != "" {
		if err := probe.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return fmt.Errorf("proxy check failed (make sure a SOCKS5 proxy is running at %s): %w",
				cfg.ProxyAddress, err)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	rows, sourceName, err := loadRows(ctx, cfg)
	if err != nil {
		return err
	}
	if err := source.RequireColumns(rows, cfg.IdentifierColumn, cfg.URLColumn); err != nil {
		return fmt.Errorf("%s: %w", cfg.InputFile, err)
	}

	prober, err := newProber(cfg, logger)
	if err != nil {
		return err
	}
	defer prober.Close()

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineColumns(cfg.IdentifierColumn, cfg.URLColumn),
		pipeline.WithPipelineStableOrder(cfg.StableOrder),
	}
	var prog *progress
	if cfg.Progress {
		prog = newProgress(errOut)
		configOpts = append(configOpts, pipeline.WithPipelineOutcomeHook(prog.record))
	}

	p, err := pipeline.DefaultPipeline(
		prober,
		pipeline.DispatcherConfig{
			MaxConcurrency:    cfg.Concurrency,
			PerRequestTimeout: cfg.Timeout,
		},
		[]pipeline.Option{pipeline.WithLogger(logger)},
		configOpts...,
	)
	if err != nil {
		return err
	}

	audit := model.NewAudit(sourceName, rows)
	execErr := p.Execute(ctx, audit)
	if prog != nil {
		prog.finish()
	}
	if execErr != nil && !isInterruption(execErr) {
		return execErr
	}
	if audit.Interrupted {
		fmt.Fprintln(errOut, "Audit interrupted: unfinished requests are reported as timeouts.")
	}

	logger.Info("audit completed",
		"run_id", audit.RunID,
		"urls", audit.ExtractStats.URLs,
		"failed", audit.Report.FailedCount,
		"elapsed", audit.Elapsed,
	)

	return outputReport(cfg, audit, out)
}

func isInterruption(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// loadRows reads the input file. SQLite exports are recognized by extension.
func loadRows(ctx context.Context, cfg *config.Config) ([]model.Row, string, error) {
	switch strings.ToLower(filepath.Ext(cfg.InputFile)) {
	case ".db", ".sqlite", ".sqlite3":
		export, err := database.OpenExport(cfg.InputFile)
		if err != nil {
			return nil, "", err
		}
		defer export.Close()

		table, err := export.ResolveTable(ctx, cfg.Table)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", cfg.InputFile, err)
		}
		rows, err := export.ReadRows(ctx, table, cfg.IdentifierColumn, cfg.URLColumn)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", cfg.InputFile, err)
		}
		return rows, cfg.InputFile + ":" + table, nil

	default:
		var opts []source.Option
		if cfg.Latin1 {
			opts = append(opts, source.WithLatin1())
		}
		if strings.EqualFold(filepath.Ext(cfg.InputFile), ".tsv") {
			opts = append(opts, source.WithDelimiter('\t'))
		}
		rows, err := source.OpenCSV(cfg.InputFile, opts...)
		if err != nil {
			return nil, "", err
		}
		return rows, cfg.InputFile, nil
	}
}

func newProber(cfg *config.Config, logger *slog.Logger) (*probe.HTTPProber, error) {
	opts := []probe.Option{
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithMethod(cfg.Method),
		probe.WithMaxRedirects(cfg.MaxRedirects),
		probe.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, probe.WithProxy(cfg.ProxyAddress))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, probe.WithHeaders(cfg.Headers))
	}
	return probe.NewHTTPProber(opts...)
}

// newReportWriter returns the writer for the selected format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		opts := []report.JSONWriterOption{report.WithPrettyPrint()}
		if cfg.JSONEnvelope {
			opts = append(opts, report.WithEnvelope(getVersion()))
		}
		return report.NewJSONWriter(w, opts...)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the report to stdout, or to cfg.ReportFile with a
// text summary on stdout.
func outputReport(cfg *config.Config, audit *model.Audit, out io.Writer) error {
	if cfg.ReportFile == "" {
		_, err := newReportWriter(cfg, out).Write(audit)
		return err
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports list partner pixel URLs; keep them owner-readable only.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := report.NewMultiWriter(
		newReportWriter(cfg, f),
		report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)),
	)
	if _, err := w.Write(audit); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
