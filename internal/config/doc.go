// Package config assembles the configuration of carelink-downloader.
// Values come from defaults, an optional YAML file, OPTION_* environment
// variables and command line flags, in increasing order of precedence.
// The result is validated once before any network call.
package config
