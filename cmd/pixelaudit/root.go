package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/pixelaudit/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pixelaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pixelaudit",
		Short: "Check tracking-pixel URLs from ad-delivery exports",
		Long: `pixelaudit reads a CSV or SQLite export of ad-delivery rows, extracts the
impression pixel URLs of every row, requests each one with bounded
concurrency, and reports the URLs that failed or timed out, grouped by
campaign identifier.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag reads --verbose from the command or the root's persistent flags.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger returns a logger that masks credentials in pixel URLs and
// headers. Warn level unless verbose.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}
