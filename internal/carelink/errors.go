package carelink

import (
	"errors"
	"fmt"
)

// Login and request errors.
var (
	// ErrNoLoginSession is returned when the SSO landing page does not carry
	// the session parameters needed to post the credentials.
	ErrNoLoginSession = errors.New("login page did not provide session parameters")

	// ErrNoConsentForm is returned when the response to the credentials form
	// has no consent form. This usually means the credentials were rejected.
	ErrNoConsentForm = errors.New("consent form not found: credentials may be invalid")

	// ErrNoAuthToken is returned when the login flow completed but no
	// authorization cookie was set.
	ErrNoAuthToken = errors.New("authorization token cookie not set")

	// ErrNotLoggedIn is returned by data calls made without a session.
	ErrNotLoggedIn = errors.New("client is not logged in")

	// ErrNoBLEEndpoint is returned when a BLE device is reported but the
	// country settings have no periodic data endpoint.
	ErrNoBLEEndpoint = errors.New("country settings have no BLE periodic data endpoint")

	// ErrInvalidData is returned when a 200 response cannot be decoded.
	ErrInvalidData = errors.New("recent data response is not a JSON object")
)

// StatusError is returned when CareLink answers with an unexpected status.
type StatusError struct {
	// Step names the request, e.g. "users/me".
	Step string
	Code int
	// Message is the error message found in the body, if any.
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Step, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Step, e.Code)
}
