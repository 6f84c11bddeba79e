package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for carelink-downloader.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carelink-downloader",
		Short: "Download CareLink session and recent data as JSON",
		Long: `carelink-downloader logs in to a Medtronic CareLink account and exports
the session records (user, profile, country settings, monitor data) and
the recent pump and sensor data as JSON files.

Options are read from a .carelink-downloader.yaml file, then from
OPTION_* environment variables, then from flags. Later sources win.
The password is read from the file or OPTION_PASSWORD only.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .carelink-downloader.yaml in current, XDG config or home directory)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
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
