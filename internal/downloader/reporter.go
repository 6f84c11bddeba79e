package downloader

import (
	"context"
	"log/slog"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// SessionReporter exports the records of a logged-in session.
type SessionReporter struct {
	source   SessionSource
	exporter Exporter
	logger   *slog.Logger
}

// NewSessionReporter creates a SessionReporter.
// A nil logger uses slog.Default().
func NewSessionReporter(source SessionSource, exporter Exporter, logger *slog.Logger) *SessionReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionReporter{
		source:   source,
		exporter: exporter,
		logger:   logger,
	}
}

// Report exports the user, profile, country settings and monitor data
// records into cycle. Each export is independent: a missing record or a
// failed write is logged and collected, and the remaining exports still
// run. The collected errors are returned in export order.
func (r *SessionReporter) Report(ctx context.Context, cycle *model.CycleResult) []error {
	records := []struct {
		kind model.Kind
		rec  model.Record
	}{
		{kind: model.KindUser, rec: r.source.SessionUser()},
		{kind: model.KindProfile, rec: r.source.SessionProfile()},
		{kind: model.KindCountry, rec: r.source.SessionCountrySettings()},
		{kind: model.KindMonitor, rec: r.source.SessionMonitorData()},
	}

	var errs []error
	for _, item := range records {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			cycle.AddError(err)
			return errs
		}
		if err := exportRecord(ctx, r.exporter, r.logger, cycle, item.kind, item.rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
