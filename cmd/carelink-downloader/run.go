package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amspoke/carelink-downloader/internal/carelink"
	"github.com/amspoke/carelink-downloader/internal/config"
	"github.com/amspoke/carelink-downloader/internal/downloader"
	"github.com/amspoke/carelink-downloader/internal/export"
	"github.com/amspoke/carelink-downloader/internal/history"
	"github.com/amspoke/carelink-downloader/internal/model"
	"github.com/amspoke/carelink-downloader/internal/report"
	"github.com/amspoke/carelink-downloader/internal/storage"
)

// Report formats.
const (
	formatSimple   = "simple"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

var (
	// errRunFailed is returned when a run fails to log in or aborts.
	errRunFailed = errors.New("run failed")
	// errUnknownFormat is returned for an unsupported --format value.
	errUnknownFormat = errors.New("unknown report format")
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Log in to CareLink and download the configured records",
		Long: `Run logs in to CareLink once and executes the configured number of
download cycles. Each cycle exports the session records (--session) and
the recent data (--data) as timestamped JSON files.

Recent data is retried once by default when CareLink answers with an
error status. A run summary is printed at the end and recorded in the
history database.

Examples:
  # Download recent data once into the current directory
  OPTION_PASSWORD=secret carelink-downloader run -u alice --country it --data

  # Download everything every 5 minutes for an hour, anonymized
  carelink-downloader run --session --data --anonymize --repeat 12 --wait 5

  # Upload to an S3 bucket and print a JSON summary
  carelink-downloader run --data --s3-bucket my-bucket --format json`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	addDownloadFlags(cmd)

	// Report flags
	cmd.Flags().String("format", formatSimple,
		"Summary format: simple, json or markdown")
	cmd.Flags().String("report-file", "",
		"Also write the summary to this file (format from extension: .json, .md)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	reportFile, err := cmd.Flags().GetString("report-file")
	if err != nil {
		return err
	}
	if _, err := newReportWriter(format, io.Discard, false); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	summary, err := executeRun(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := outputReport(cmd.OutOrStdout(), format, reportFile, cfg.Verbose, summary); err != nil {
		logger.Error("report failed", "error", err)
	}

	switch summary.Outcome {
	case model.OutcomeLoginFailed, model.OutcomeAborted:
		return fmt.Errorf("%w: %s", errRunFailed, summary.Outcome)
	default:
		return nil
	}
}

// executeRun performs one download run with a fresh CareLink client and
// records it in the history database when enabled.
func executeRun(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.RunSummary, error) {
	exporter, err := newExporter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	d := downloader.New(cfg.RunConfig, client, exporter, downloader.WithLogger(logger))
	summary := d.Run(ctx, cfg.Credentials())

	if cfg.SaveHistory {
		// The run is recorded even when it was cancelled.
		if err := saveHistory(context.WithoutCancel(ctx), cfg.HistoryDir, summary); err != nil {
			logger.Warn("failed to record run", "run", summary.ID, "error", err)
		} else {
			logger.Info("run recorded", "run", summary.ID, "dir", cfg.HistoryDir)
		}
	}
	return summary, nil
}

// newClient builds the CareLink client of one run.
func newClient(cfg *config.Config, logger *slog.Logger) (*carelink.Client, error) {
	opts := []carelink.Option{
		carelink.WithLanguage(cfg.Language),
		carelink.WithTimeout(cfg.RequestTimeout),
		carelink.WithLogger(logger),
	}
	if cfg.ServerURL != "" {
		base, err := url.Parse(cfg.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidServerURL, err)
		}
		opts = append(opts, carelink.WithBaseURL(base))
	}
	return carelink.NewClient(opts...), nil
}

// newExporter builds the exporter writing to the folder or the S3 bucket.
func newExporter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*export.Exporter, error) {
	var sink export.Sink
	if cfg.UsesStorage() {
		uploader, err := storage.NewS3UploaderFromEnv(ctx, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		sink = export.NewStorageSink(uploader, cfg.StorageBucket, export.WithStagingDir(cfg.StagingDir))
	} else {
		sink = export.NewFileSink(cfg.Folder, export.WithSinkLogger(logger))
	}
	return export.New(sink, export.WithAnonymize(cfg.Anonymize)), nil
}

// saveHistory records summary in the history database in dir.
func saveHistory(ctx context.Context, dir string, summary *model.RunSummary) error {
	db, err := history.Open(ctx, dir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	return db.SaveRun(ctx, summary)
}

// newReportWriter returns the report writer of format.
func newReportWriter(format string, w io.Writer, verbose bool) (report.Writer, error) {
	switch strings.ToLower(format) {
	case formatSimple, "":
		return report.NewSimpleWriter(w, report.WithVerbose(verbose)), nil
	case formatJSON:
		return report.NewJSONWriter(w, report.WithPrettyPrint()), nil
	case formatMarkdown, "md":
		return report.NewMarkdownWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q (use simple, json or markdown)", errUnknownFormat, format)
	}
}

// formatForFile returns the report format matching the extension of path.
func formatForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".md", ".markdown":
		return formatMarkdown
	default:
		return formatSimple
	}
}

// outputReport writes the run summary to out and, if reportFile is set,
// to that file as well.
func outputReport(out io.Writer, format, reportFile string, verbose bool, summary *model.RunSummary) error {
	stdoutWriter, err := newReportWriter(format, out, verbose)
	if err != nil {
		return err
	}
	writers := []report.Writer{stdoutWriter}

	if reportFile != "" {
		dir := filepath.Dir(reportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list artifact locations; keep them owner-readable only.
		f, err := os.OpenFile(reportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // User-provided report path is intentional
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()

		fileWriter, err := newReportWriter(formatForFile(reportFile), f, verbose)
		if err != nil {
			return err
		}
		writers = append(writers, fileWriter)
	}

	_, err = report.NewMultiWriter(writers...).Write(summary)
	return err
}
