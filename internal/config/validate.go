package config

import (
	"fmt"
	"net/url"

	"golang.org/x/text/language"
)

// Validate checks the configuration and returns the first problem found.
// It is called once after the configuration is assembled, before any
// network call.
func (c *Config) Validate() error {
	if c.Username == "" {
		return ErrMissingUsername
	}
	if c.Password == "" {
		return ErrMissingPassword
	}
	if c.Country == "" {
		return ErrMissingCountry
	}
	region, err := language.ParseRegion(c.Country)
	if err != nil || !region.IsCountry() {
		return fmt.Errorf("%w: %q", ErrInvalidCountry, c.Country)
	}
	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Language)
		}
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidServerURL, c.ServerURL)
		}
	}
	return c.RunConfig.Validate()
}

// Validate checks the options of a run.
func (r RunConfig) Validate() error {
	if r.Repeat < 1 {
		return ErrInvalidRepeat
	}
	if r.WaitMinutes < 0 {
		return ErrInvalidWait
	}
	if r.FetchAttempts < 1 {
		return ErrInvalidFetchAttempts
	}
	if r.RetryBackoff < 0 {
		return ErrInvalidRetryBackoff
	}
	return nil
}
