package config

import "errors"

// Configuration errors returned by Validate and the loaders.
// They are sentinel values so that callers can match them with errors.Is.
var (
	// ErrMissingUsername is returned when no CareLink username is set.
	ErrMissingUsername = errors.New("missing username: set OPTION_USERNAME or --username")

	// ErrMissingPassword is returned when no CareLink password is set.
	ErrMissingPassword = errors.New("missing password: set OPTION_PASSWORD or the password key of the config file")

	// ErrMissingCountry is returned when no country is set.
	ErrMissingCountry = errors.New("missing country: set OPTION_COUNTRY or --country")

	// ErrInvalidCountry is returned when the country is not an ISO 3166 country code.
	ErrInvalidCountry = errors.New("invalid country: must be an ISO 3166 country code such as es or us")

	// ErrInvalidLanguage is returned when the language is not a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language: must be a BCP 47 tag such as en")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidServerURL is returned when the server override is not an absolute URL.
	ErrInvalidServerURL = errors.New("invalid server URL: must be absolute")

	// ErrInvalidRepeat is returned when fewer than one cycle is requested.
	ErrInvalidRepeat = errors.New("invalid repeat: must be at least 1")

	// ErrInvalidWait is returned when the wait between cycles is negative.
	ErrInvalidWait = errors.New("invalid wait: must be non-negative")

	// ErrInvalidFetchAttempts is returned when the attempt budget is below one.
	ErrInvalidFetchAttempts = errors.New("invalid fetch attempts: must be at least 1")

	// ErrInvalidRetryBackoff is returned when the retry backoff is negative.
	ErrInvalidRetryBackoff = errors.New("invalid retry backoff: must be non-negative")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidEnvironment is returned when an OPTION_* variable cannot be parsed.
	ErrInvalidEnvironment = errors.New("invalid environment variable")
)
