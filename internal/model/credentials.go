package model

import "log/slog"

// Credentials identify the CareLink account used for one run.
// Values are passed by value and never persisted.
type Credentials struct {
	Username string
	Password string
	// Country is the ISO 3166 alpha-2 code of the account's country.
	Country string
}

// LogValue implements slog.LogValuer. The password is never logged.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("country", c.Country),
	)
}

// String implements fmt.Stringer without exposing the password.
func (c Credentials) String() string {
	return "Credentials{username=" + c.Username + ", country=" + c.Country + "}"
}
