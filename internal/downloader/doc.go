// Package downloader runs CareLink download sessions.
//
// A run logs in once and then executes a number of cycles. Each cycle is a
// pipeline of two optional steps: the session step exports the user,
// profile, country settings and monitor records, and the recent-data step
// fetches the last 24 hours of data with a bounded retry loop and exports
// it. Cycles are separated by a configurable wait.
//
// Failures never escape Run. They are logged and recorded in the returned
// model.RunSummary, whose Outcome summarizes the run:
//
//	ok            every enabled step of every cycle succeeded
//	degraded      at least one step failed
//	login_failed  login failed, no cycle ran
//	cancelled     the context was cancelled
//	aborted       a panic was recovered
//
// # Recent-data retries
//
// Each cycle has a budget of FetchAttempts calls. A 401 answer or any
// other non-200 status (including transport errors, reported as status 0)
// consumes one attempt and is retried after RetryBackoff. A 200 answer
// either succeeds or, when the body carries an error, ends the cycle's
// fetch at once with an optional raw dump. No backoff follows the final
// attempt.
package downloader
