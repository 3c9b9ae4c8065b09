package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zfsreader/zfsreader/internal/helpers"
)

var (
	logLevel  string
	logFormat string
	noColor   bool
)

// usageError marks an invalid flag value or flag combination detected by
// a subcommand so Execute can map it to exit code 2 instead of the
// generic failure code 1. Argument-count and flag-parsing errors reported
// by cobra itself are not wrapped and exit with 1.
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

var rootCmd = &cobra.Command{
	Use:   "zfsreader <command> <image-path>",
	Short: "Read-only forensic reader and extractor for ZFS pool images",
	Long: `zfsreader is a read-only command-line tool that locates the most recent
uberblock in a ZFS pool image, walks the Meta Object Set down to the root
dataset, and extracts the filesystem tree to a native output directory.

It never mounts, writes to, or otherwise modifies the image it reads.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
}

// Execute runs the root command, exiting 0 on success, 1 on a runtime
// failure (open/no-valid-uberblock), and 2 on a usageError.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colorized log output")
}

// logger builds the process-wide logger from the persistent log flags.
func logger() *logrus.Logger {
	log := helpers.NewLogger(logLevel, logFormat)
	if noColor && logFormat != "json" {
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return log
}
