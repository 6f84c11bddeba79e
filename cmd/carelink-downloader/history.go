package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amspoke/carelink-downloader/internal/config"
	"github.com/amspoke/carelink-downloader/internal/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded download runs",
		Long: `History lists the runs recorded in the history database, newest first.

Examples:
  # List the last 20 runs
  carelink-downloader history

  # Show one run as Markdown
  carelink-downloader history show 0b0e9f6c-... --format markdown

  # List the files written by one run
  carelink-downloader history artifacts 0b0e9f6c-...`,
		Args: cobra.NoArgs,
		RunE: runHistoryListCmd,
	}

	addHistoryFlags(cmd)
	cmd.Flags().IntP("limit", "n", history.DefaultListLimit, "Maximum number of runs to list")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryArtifactsCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the summary of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	addHistoryFlags(cmd)
	return cmd
}

func newHistoryArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts <run-id>",
		Short: "List the artifacts of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryArtifactsCmd,
	}
	cmd.Flags().String("history-dir", "", "Directory of the history database (default: XDG data directory)")
	return cmd
}

// addHistoryFlags registers the flags shared by the history commands.
func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", formatSimple, "Output format: simple, json or markdown")
	cmd.Flags().String("history-dir", "", "Directory of the history database (default: XDG data directory)")
}

// openHistory opens the existing history database selected by cmd.
// It returns nil without error when no run was ever recorded.
func openHistory(cmd *cobra.Command) (*history.DB, error) {
	dir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}

	opts := history.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := history.Open(cmd.Context(), dir, opts)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// runHistoryListCmd executes the history command.
func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	writer, err := newReportWriter(format, cmd.OutOrStdout(), getVerboseFlag(cmd))
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if db == nil {
		_, err := writer.WriteList(nil)
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	_, err = writer.WriteList(runs)
	return err
}

// runHistoryShowCmd executes the history show command.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	writer, err := newReportWriter(format, cmd.OutOrStdout(), getVerboseFlag(cmd))
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("%w: %s", history.ErrNotFound, args[0])
	}
	defer db.Close()

	run, err := db.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = writer.Write(run)
	return err
}

// runHistoryArtifactsCmd executes the history artifacts command.
func runHistoryArtifactsCmd(cmd *cobra.Command, args []string) error {
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("%w: %s", history.ErrNotFound, args[0])
	}
	defer db.Close()

	artifacts, err := db.ListArtifacts(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No artifacts recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CYCLE\tKIND\tSIZE\tLOCATION")
	for _, a := range artifacts {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", a.Cycle, a.Kind, a.Size, a.Location)
	}
	return tw.Flush()
}
