package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envBinding maps a configuration key to its environment variable.
type envBinding struct {
	key string
	env string
}

// envBindings lists the OPTION_* variables read by LoadEnv.
var envBindings = []envBinding{
	{key: "username", env: "OPTION_USERNAME"},
	{key: "password", env: "OPTION_PASSWORD"},
	{key: "country", env: "OPTION_COUNTRY"},
	{key: "language", env: "OPTION_LANGUAGE"},
	{key: "verbose", env: "OPTION_VERBOSE"},
	{key: "session", env: "OPTION_SESSION"},
	{key: "data", env: "OPTION_DATA"},
	{key: "anonymize", env: "OPTION_ANONYM"},
	{key: "dumpjsonexception", env: "OPTION_JSON_EXCEPTION"},
	{key: "folder", env: "OPTION_FOLDER"},
	{key: "s3bucket", env: "OPTION_S3BUCKET"},
	{key: "s3region", env: "OPTION_S3REGION"},
	{key: "repeat", env: "OPTION_REPEAT"},
	{key: "wait", env: "OPTION_WAIT"},
}

// envValues receives the environment through viper.
// Keys of unset variables are absent from viper's settings, so their
// fields stay nil.
type envValues struct {
	Username          *string `mapstructure:"username"`
	Password          *string `mapstructure:"password"`
	Country           *string `mapstructure:"country"`
	Language          *string `mapstructure:"language"`
	Verbose           *bool   `mapstructure:"verbose"`
	Session           *bool   `mapstructure:"session"`
	Data              *bool   `mapstructure:"data"`
	Anonymize         *bool   `mapstructure:"anonymize"`
	DumpJSONException *bool   `mapstructure:"dumpjsonexception"`
	Folder            *string `mapstructure:"folder"`
	S3Bucket          *string `mapstructure:"s3bucket"`
	S3Region          *string `mapstructure:"s3region"`
	Repeat            *int    `mapstructure:"repeat"`
	Wait              *int    `mapstructure:"wait"`
}

// LoadEnv applies the OPTION_* environment variables to cfg.
// Empty variables are treated as unset. A value that cannot be converted
// to the option's type returns ErrInvalidEnvironment.
func LoadEnv(cfg *Config) error {
	v := viper.New()
	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return fmt.Errorf("bind %s: %w", b.env, err)
		}
	}

	var env envValues
	if err := v.Unmarshal(&env, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEnvironment, err)
	}

	setString(&cfg.Username, env.Username)
	setString(&cfg.Password, env.Password)
	setString(&cfg.Country, env.Country)
	setString(&cfg.Language, env.Language)
	setBool(&cfg.Verbose, env.Verbose)
	setBool(&cfg.DownloadSession, env.Session)
	setBool(&cfg.DownloadData, env.Data)
	setBool(&cfg.Anonymize, env.Anonymize)
	setBool(&cfg.DumpOnError, env.DumpJSONException)
	setString(&cfg.Folder, env.Folder)
	setString(&cfg.StorageBucket, env.S3Bucket)
	setString(&cfg.S3Region, env.S3Region)
	setInt(&cfg.Repeat, env.Repeat)
	setInt(&cfg.WaitMinutes, env.Wait)
	return nil
}
