// Package log provides the structured logger of carelink-downloader.
//
// Loggers are standard *slog.Logger values whose handler masks secrets
// before they reach the output:
//   - account credentials (password, username, email)
//   - CareLink session material (auth_tmp_token, sessionID, sessionData)
//   - HTTP headers carrying secrets (Authorization, Cookie)
//   - bearer and JWT tokens found in any string value
//
// Query parameters of logged URLs are masked in place, so a logged login
// redirect keeps its host and path but loses sessionData.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("login redirect", "url", landing.String())
//
// Verbose loggers log at Debug level, others at Warn, so progress lines
// logged at Info only appear in verbose mode.
package log
