// Package model defines the data structures shared by carelink-downloader.
//
// This package contains the following main types:
//   - Record: the closed set of CareLink responses that can be exported
//     (User, Profile, CountrySettings, MonitorData, RecentData)
//   - Credentials: the account used for one download run
//   - RunSummary: the outcome of one run, its cycles and artifacts
//
// The models live in their own package so that the client, exporter,
// downloader, history and report packages can share them without import
// cycles. Every type is serializable to JSON; CareLink field names are
// kept verbatim in the struct tags, including the API's own misspellings.
package model
