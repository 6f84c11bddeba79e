package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".carelink-downloader.yaml"

// File is the content of a configuration file.
// Unset keys are nil and leave the configuration unchanged.
type File struct {
	Username          *string        `yaml:"username"`
	Password          *string        `yaml:"password"`
	Country           *string        `yaml:"country"`
	Language          *string        `yaml:"language"`
	Verbose           *bool          `yaml:"verbose"`
	Session           *bool          `yaml:"session"`
	Data              *bool          `yaml:"data"`
	Anonymize         *bool          `yaml:"anonymize"`
	DumpJSONException *bool          `yaml:"dumpJsonException"`
	Folder            *string        `yaml:"folder"`
	S3Bucket          *string        `yaml:"s3Bucket"`
	S3Region          *string        `yaml:"s3Region"`
	Repeat            *int           `yaml:"repeat"`
	Wait              *int           `yaml:"wait"`
	FetchAttempts     *int           `yaml:"fetchAttempts"`
	RetryBackoff      *time.Duration `yaml:"retryBackoff"`
	RequestTimeout    *time.Duration `yaml:"requestTimeout"`
	ServerURL         *string        `yaml:"serverUrl"`
	History           *bool          `yaml:"history"`
	ListenAddr        *string        `yaml:"listen"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that is an error based on whether the path was
// given explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies every key set in the file into cfg.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	setString(&cfg.Username, f.Username)
	setString(&cfg.Password, f.Password)
	setString(&cfg.Country, f.Country)
	setString(&cfg.Language, f.Language)
	setBool(&cfg.Verbose, f.Verbose)
	setBool(&cfg.DownloadSession, f.Session)
	setBool(&cfg.DownloadData, f.Data)
	setBool(&cfg.Anonymize, f.Anonymize)
	setBool(&cfg.DumpOnError, f.DumpJSONException)
	setString(&cfg.Folder, f.Folder)
	setString(&cfg.StorageBucket, f.S3Bucket)
	setString(&cfg.S3Region, f.S3Region)
	setInt(&cfg.Repeat, f.Repeat)
	setInt(&cfg.WaitMinutes, f.Wait)
	setInt(&cfg.FetchAttempts, f.FetchAttempts)
	setDuration(&cfg.RetryBackoff, f.RetryBackoff)
	setDuration(&cfg.RequestTimeout, f.RequestTimeout)
	setString(&cfg.ServerURL, f.ServerURL)
	setBool(&cfg.SaveHistory, f.History)
	setString(&cfg.ListenAddr, f.ListenAddr)
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .carelink-downloader.yaml in the current directory
//  3. config.yaml in the XDG config directory
//  4. .carelink-downloader.yaml in the user's home directory
//
// Returns the path of the first file found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *time.Duration) {
	if src != nil {
		*dst = *src
	}
}
