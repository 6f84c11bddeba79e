// Package export turns CareLink records into JSON artifacts.
//
// An Exporter anonymizes a record when enabled, serializes it as indented
// JSON (raw error dumps are written unchanged) and hands the bytes to exactly one Sink. Artifacts are named
// "{kind}-{yyyyMMdd_HHmmss}.json" from the exporter's clock in the local
// time zone of the process. Names have a resolution of one second, so two
// artifacts of the same kind exported within the same second share a name
// and the later one replaces the earlier; FileSink logs a warning when that
// happens.
//
// Two sinks are provided:
//   - FileSink writes into a local folder (the working directory when unset)
//   - StorageSink stages the file locally, uploads it once, then removes
//     the staged copy; a failed upload keeps the staged file on disk
//
// Export failures are returned as *Error values carrying the artifact kind
// and the failed stage. They are never fatal to a download run.
package export
