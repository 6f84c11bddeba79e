package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "carelink-downloader"

	// DefaultRepeat is the number of download cycles of a run.
	DefaultRepeat = 1

	// DefaultWaitMinutes is the pause between two cycles.
	DefaultWaitMinutes = 1

	// DefaultFetchAttempts is the recent-data attempt budget of a cycle.
	// Two attempts tolerate exactly one expired session or network hiccup.
	DefaultFetchAttempts = 2

	// DefaultRetryBackoff is the pause between two recent-data attempts.
	DefaultRetryBackoff = 1 * time.Second

	// DefaultLanguage is the language requested from CareLink.
	DefaultLanguage = "en"

	// DefaultStagingDir is where artifacts are staged before an upload.
	DefaultStagingDir = "/tmp"

	// DefaultS3Region is the region of the artifact bucket.
	DefaultS3Region = "eu-south-2"

	// DefaultRequestTimeout bounds each CareLink HTTP request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultListenAddr is the address of the serve command.
	DefaultListenAddr = ":8080"
)

// RunConfig holds the options of one download run.
// It is passed by value into the downloader and never changes during a run.
type RunConfig struct {
	// Verbose enables progress logging.
	Verbose bool

	// DownloadSession exports user, profile, country settings and monitor
	// data every cycle.
	DownloadSession bool

	// DownloadData fetches and exports recent data every cycle.
	DownloadData bool

	// Anonymize scrubs personal data before serialization.
	Anonymize bool

	// DumpOnError exports the raw body of a failed recent-data response.
	DumpOnError bool

	// Folder is the local output folder. Empty means the working directory.
	Folder string

	// StorageBucket uploads artifacts to this S3 bucket instead of Folder.
	StorageBucket string

	// Repeat is the number of cycles, at least 1.
	Repeat int

	// WaitMinutes is the pause between cycles, at least 0.
	WaitMinutes int

	// FetchAttempts is the recent-data attempt budget per cycle.
	FetchAttempts int

	// RetryBackoff is the pause between two recent-data attempts.
	RetryBackoff time.Duration
}

// Wait returns the pause between cycles.
func (r RunConfig) Wait() time.Duration {
	return time.Duration(r.WaitMinutes) * time.Minute
}

// UsesStorage reports whether artifacts go to object storage.
func (r RunConfig) UsesStorage() bool {
	return r.StorageBucket != ""
}

// Config holds every option of carelink-downloader.
// It is built once at the command boundary from defaults, the config file,
// OPTION_* environment variables and flags, in that order of precedence.
type Config struct {
	RunConfig

	// Username is the CareLink account name.
	Username string

	// Password is the CareLink account password.
	Password string

	// Country is the ISO 3166 alpha-2 code of the account's country.
	Country string

	// Language is the BCP 47 language requested from CareLink.
	Language string

	// ServerURL overrides the CareLink server chosen from Country.
	ServerURL string

	// RequestTimeout bounds each CareLink HTTP request.
	RequestTimeout time.Duration

	// S3Region is the region of StorageBucket.
	S3Region string

	// StagingDir is where artifacts are staged before an upload.
	StagingDir string

	// HistoryDir is the directory of the run history database.
	HistoryDir string

	// SaveHistory records every run in the history database.
	SaveHistory bool

	// ListenAddr is the address of the serve command.
	ListenAddr string

	// ReportStatus makes the serve command answer with the run outcome
	// instead of the fixed success payload.
	ReportStatus bool

	// JSONLogs writes logs as JSON lines.
	JSONLogs bool

	// ConfigFilePath is the path of the configuration file, if any.
	ConfigFilePath string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		RunConfig: RunConfig{
			Repeat:        DefaultRepeat,
			WaitMinutes:   DefaultWaitMinutes,
			FetchAttempts: DefaultFetchAttempts,
			RetryBackoff:  DefaultRetryBackoff,
		},
		Language:       DefaultLanguage,
		RequestTimeout: DefaultRequestTimeout,
		S3Region:       DefaultS3Region,
		StagingDir:     DefaultStagingDir,
		HistoryDir:     XDGDataDir(),
		SaveHistory:    true,
		ListenAddr:     DefaultListenAddr,
	}
}

// Credentials returns the account of the configuration.
func (c *Config) Credentials() model.Credentials {
	return model.Credentials{
		Username: c.Username,
		Password: c.Password,
		Country:  c.Country,
	}
}

// XDGDataDir returns the XDG data directory of carelink-downloader.
// On Linux: ~/.local/share/carelink-downloader
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory of carelink-downloader.
// On Linux: ~/.config/carelink-downloader
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
