// Package carelink is a minimal client for the Medtronic CareLink cloud.
//
// It implements the calls a download run needs and nothing more:
//   - Login: the SSO form login and consent flow, followed by loading the
//     session records (user, profile, country settings, monitor data)
//   - RecentData: the last-24-hours telemetry, from the connect endpoint or
//     the BLE periodic data endpoint depending on the device family
//
// Every call records its outcome (response code, raw body, error message,
// data success flag). Callers inspect these after each call to decide
// whether to retry, which mirrors how the CareLink API reports failures:
// an expired session answers 401, while an application-level failure can
// still answer 200 with an unusable body.
//
// A Client holds the session of one run. It is not safe for concurrent use.
package carelink
