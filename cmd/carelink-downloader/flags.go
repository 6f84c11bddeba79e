package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amspoke/carelink-downloader/internal/config"
	"github.com/amspoke/carelink-downloader/internal/log"
)

// addDownloadFlags registers the flags shared by run and serve.
func addDownloadFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// Account flags. The password is read from the file or OPTION_PASSWORD.
	flags.StringP("username", "u", "", "CareLink username")
	flags.String("country", "", "ISO 3166 country code of the account (e.g. it, de, us)")
	flags.String("language", config.DefaultLanguage, "Language requested from CareLink")

	// Download flags
	flags.Bool("session", false, "Download user, profile, country settings and monitor data")
	flags.Bool("data", false, "Download recent pump and sensor data")
	flags.Bool("anonymize", false, "Replace personal data with placeholders")
	flags.Bool("dump-on-error", false, "Write the raw response when recent data reports an error")
	flags.IntP("repeat", "r", config.DefaultRepeat, "Number of download cycles")
	flags.IntP("wait", "w", config.DefaultWaitMinutes, "Minutes to wait between two cycles")
	flags.Int("fetch-attempts", config.DefaultFetchAttempts, "Recent data attempts per cycle")
	flags.Duration("retry-backoff", config.DefaultRetryBackoff, "Pause between two recent data attempts")

	// Output flags
	flags.StringP("folder", "o", "", "Output folder for JSON files (default: current directory)")
	flags.String("s3-bucket", "", "Upload files to this S3 bucket instead of the output folder")
	flags.String("s3-region", config.DefaultS3Region, "Region of the S3 bucket")
	flags.String("staging-dir", config.DefaultStagingDir, "Directory for files staged before upload")

	// Connection flags
	flags.DurationP("timeout", "t", config.DefaultRequestTimeout, "Timeout of each CareLink request")
	flags.String("server-url", "", "CareLink server URL (default: chosen from the country)")

	// History flags
	flags.Bool("no-history", false, "Do not record the run in the history database")
	flags.String("history-dir", "", "Directory of the history database (default: XDG data directory)")
}

// buildConfig creates a Config from defaults, the configuration file,
// the environment and the flags set on cmd, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path specified, silently continue when no file is found.
	explicitConfigPath := configPath != ""
	foundPath := config.FindConfigFile(configPath)
	switch {
	case foundPath != "":
		file, err := config.LoadConfigFile(foundPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", foundPath, err)
		}
		file.Apply(cfg)
		cfg.ConfigFilePath = foundPath
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if err := config.LoadEnv(cfg); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every flag the user set on the command line into cfg.
// Flags left at their default do not override the file or the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	str := func(name string, dst *string) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetBool(name)
		}
	}
	integer := func(name string, dst *int) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetInt(name)
		}
	}
	duration := func(name string, dst *time.Duration) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetDuration(name)
		}
	}

	boolean("verbose", &cfg.Verbose)
	str("username", &cfg.Username)
	str("country", &cfg.Country)
	str("language", &cfg.Language)
	boolean("session", &cfg.DownloadSession)
	boolean("data", &cfg.DownloadData)
	boolean("anonymize", &cfg.Anonymize)
	boolean("dump-on-error", &cfg.DumpOnError)
	integer("repeat", &cfg.Repeat)
	integer("wait", &cfg.WaitMinutes)
	integer("fetch-attempts", &cfg.FetchAttempts)
	duration("retry-backoff", &cfg.RetryBackoff)
	str("folder", &cfg.Folder)
	str("s3-bucket", &cfg.StorageBucket)
	str("s3-region", &cfg.S3Region)
	str("staging-dir", &cfg.StagingDir)
	duration("timeout", &cfg.RequestTimeout)
	str("server-url", &cfg.ServerURL)
	str("history-dir", &cfg.HistoryDir)
	str("listen", &cfg.ListenAddr)
	boolean("report-status", &cfg.ReportStatus)
	boolean("json-logs", &cfg.JSONLogs)

	if err == nil && flags.Changed("no-history") {
		var noHistory bool
		noHistory, err = flags.GetBool("no-history")
		cfg.SaveHistory = !noHistory
	}
	return err
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
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

// setupLogger creates the secure structured logger of a command.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONLogs {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
