package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/amspoke/carelink-downloader/internal/config"
)

// optionEnv lists the environment variables read by the configuration.
var optionEnv = []string{
	"OPTION_USERNAME", "OPTION_PASSWORD", "OPTION_COUNTRY", "OPTION_LANGUAGE",
	"OPTION_VERBOSE", "OPTION_SESSION", "OPTION_DATA", "OPTION_ANONYM",
	"OPTION_JSON_EXCEPTION", "OPTION_FOLDER", "OPTION_S3BUCKET",
	"OPTION_S3REGION", "OPTION_REPEAT", "OPTION_WAIT",
}

// clearOptionEnv unsets every OPTION_* variable for the test.
func clearOptionEnv(t *testing.T) {
	t.Helper()
	for _, name := range optionEnv {
		t.Setenv(name, "")
	}
}

// parsedRunCmd returns a run command with the root's persistent flags,
// parsed from args.
func parsedRunCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	root := NewRootCmd()
	var run *cobra.Command
	for _, sub := range root.Commands() {
		if sub.Name() == "run" {
			run = sub
		}
	}
	if run == nil {
		t.Fatal("run command not found")
	}
	if err := run.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return run
}

// writeConfigFile writes content to a config file in a temporary directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const testConfigFile = `username: file-user
password: file-secret
country: it
repeat: 3
wait: 7
session: true
folder: /from/file
`

func TestBuildConfigPrecedence(t *testing.T) {
	clearOptionEnv(t)
	path := writeConfigFile(t, testConfigFile)

	t.Run("file values override defaults", func(t *testing.T) {
		cfg, err := buildConfig(parsedRunCmd(t, "--config", path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Username != "file-user" || cfg.Password != "file-secret" || cfg.Country != "it" {
			t.Errorf("account = %q/%q/%q, want file values", cfg.Username, cfg.Password, cfg.Country)
		}
		if cfg.Repeat != 3 || cfg.WaitMinutes != 7 {
			t.Errorf("repeat/wait = %d/%d, want 3/7", cfg.Repeat, cfg.WaitMinutes)
		}
		if !cfg.DownloadSession {
			t.Error("expected session download from file")
		}
		if cfg.Language != config.DefaultLanguage {
			t.Errorf("Language = %q, want default %q", cfg.Language, config.DefaultLanguage)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("ConfigFilePath = %q, want %q", cfg.ConfigFilePath, path)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("OPTION_REPEAT", "4")
		t.Setenv("OPTION_PASSWORD", "env-secret")

		cfg, err := buildConfig(parsedRunCmd(t, "--config", path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Repeat != 4 {
			t.Errorf("Repeat = %d, want 4", cfg.Repeat)
		}
		if cfg.Password != "env-secret" {
			t.Errorf("Password = %q, want env value", cfg.Password)
		}
		if cfg.WaitMinutes != 7 {
			t.Errorf("WaitMinutes = %d, want file value 7", cfg.WaitMinutes)
		}
	})

	t.Run("flags override the environment", func(t *testing.T) {
		t.Setenv("OPTION_REPEAT", "4")
		t.Setenv("OPTION_FOLDER", "/from/env")

		cfg, err := buildConfig(parsedRunCmd(t, "--config", path, "--repeat", "5", "--folder", "/from/flag", "-u", "flag-user"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Repeat != 5 {
			t.Errorf("Repeat = %d, want 5", cfg.Repeat)
		}
		if cfg.Folder != "/from/flag" {
			t.Errorf("Folder = %q, want flag value", cfg.Folder)
		}
		if cfg.Username != "flag-user" {
			t.Errorf("Username = %q, want flag value", cfg.Username)
		}
	})

	t.Run("unset flags keep file values", func(t *testing.T) {
		cfg, err := buildConfig(parsedRunCmd(t, "--config", path, "--data"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Repeat != 3 {
			t.Errorf("Repeat = %d, want file value 3", cfg.Repeat)
		}
		if !cfg.DownloadData {
			t.Error("expected data download from flag")
		}
	})
}

func TestBuildConfigFlags(t *testing.T) {
	clearOptionEnv(t)
	path := writeConfigFile(t, "username: someone\n")

	cfg, err := buildConfig(parsedRunCmd(t,
		"--config", path,
		"-v",
		"--country", "de",
		"--language", "de",
		"--anonymize",
		"--dump-on-error",
		"--s3-bucket", "bucket",
		"--s3-region", "eu-west-1",
		"--staging-dir", "/staging",
		"--fetch-attempts", "3",
		"--retry-backoff", "2s",
		"--timeout", "5s",
		"--server-url", "http://127.0.0.1:9999",
		"--history-dir", "/history",
		"--no-history",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Verbose || !cfg.Anonymize || !cfg.DumpOnError {
		t.Errorf("verbose/anonymize/dump = %v/%v/%v, want all true", cfg.Verbose, cfg.Anonymize, cfg.DumpOnError)
	}
	if cfg.Country != "de" || cfg.Language != "de" {
		t.Errorf("country/language = %q/%q, want de/de", cfg.Country, cfg.Language)
	}
	if cfg.StorageBucket != "bucket" || cfg.S3Region != "eu-west-1" || cfg.StagingDir != "/staging" {
		t.Errorf("storage = %q/%q/%q", cfg.StorageBucket, cfg.S3Region, cfg.StagingDir)
	}
	if cfg.FetchAttempts != 3 || cfg.RetryBackoff != 2*time.Second {
		t.Errorf("attempts/backoff = %d/%v, want 3/2s", cfg.FetchAttempts, cfg.RetryBackoff)
	}
	if cfg.RequestTimeout != 5*time.Second || cfg.ServerURL != "http://127.0.0.1:9999" {
		t.Errorf("timeout/server = %v/%q", cfg.RequestTimeout, cfg.ServerURL)
	}
	if cfg.HistoryDir != "/history" || cfg.SaveHistory {
		t.Errorf("history = %q/%v, want /history/false", cfg.HistoryDir, cfg.SaveHistory)
	}
}

func TestBuildConfigErrors(t *testing.T) {
	clearOptionEnv(t)

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		_, err := buildConfig(parsedRunCmd(t, "--config", missing))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML is an error", func(t *testing.T) {
		path := writeConfigFile(t, "repeat: [not a number\n")
		if _, err := buildConfig(parsedRunCmd(t, "--config", path)); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("invalid environment value is an error", func(t *testing.T) {
		path := writeConfigFile(t, "username: someone\n")
		t.Setenv("OPTION_REPEAT", "many")
		_, err := buildConfig(parsedRunCmd(t, "--config", path))
		if !errors.Is(err, config.ErrInvalidEnvironment) {
			t.Errorf("expected ErrInvalidEnvironment, got %v", err)
		}
	})
}

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("reads the persistent flag", func(t *testing.T) {
		t.Parallel()
		if !getVerboseFlag(parsedRunCmd(t, "--verbose")) {
			t.Error("expected verbose")
		}
	})

	t.Run("returns false without the flag", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(&cobra.Command{Use: "bare"}) {
			t.Error("expected not verbose")
		}
	})
}
