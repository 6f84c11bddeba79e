package downloader

import (
	"context"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// Step names.
const (
	stepSession    = "session"
	stepRecentData = "recent_data"
)

// sessionStep exports the session records.
type sessionStep struct {
	reporter *SessionReporter
}

func (s *sessionStep) Name() string { return stepSession }

// Do records failures in cycle itself, so it always returns nil.
func (s *sessionStep) Do(ctx context.Context, cycle *model.CycleResult) error {
	s.reporter.Report(ctx, cycle)
	return nil
}

// recentDataStep fetches and exports the recent data.
type recentDataStep struct {
	downloader *Downloader
}

func (s *recentDataStep) Name() string { return stepRecentData }

// Do records failures in cycle itself, so it always returns nil.
func (s *recentDataStep) Do(ctx context.Context, cycle *model.CycleResult) error {
	s.downloader.fetchRecentData(ctx, cycle)
	return nil
}
