// Package main provides the entry point for the carelink-downloader CLI.
//
// carelink-downloader logs in to a Medtronic CareLink account and exports
// session records and recent pump and sensor data as JSON files, locally
// or to an S3 bucket.
//
// Usage:
//
//	carelink-downloader run --session --data
//	carelink-downloader serve --listen :8080
//	carelink-downloader history
//
// See --help for all available options.
package main

// main is the entry point for carelink-downloader.
func main() {
	Execute()
}
