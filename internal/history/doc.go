// Package history records download runs in a SQLite database.
//
// Every run is stored in the runs table together with its JSON summary;
// the artifacts it produced are stored one per row in the artifacts table
// so that they can be listed without decoding the summaries. The database
// lives at $XDG_DATA_HOME/carelink-downloader/history.db by default and
// uses modernc.org/sqlite, which needs no cgo.
package history
