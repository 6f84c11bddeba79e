package downloader

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/amspoke/carelink-downloader/internal/clock"
	"github.com/amspoke/carelink-downloader/internal/config"
	"github.com/amspoke/carelink-downloader/internal/model"
	"github.com/amspoke/carelink-downloader/internal/pipeline"
)

// noDetails replaces empty error messages in logs and results.
const noDetails = "no details available"

// SessionSource provides the records cached by a logged-in session.
type SessionSource interface {
	SessionUser() *model.User
	SessionProfile() *model.Profile
	SessionCountrySettings() *model.CountrySettings
	SessionMonitorData() *model.MonitorData
}

// API is the CareLink session driven by a run.
// *carelink.Client implements it.
type API interface {
	SessionSource

	// Login authenticates and loads the session records.
	Login(ctx context.Context, creds model.Credentials) bool

	// RecentData fetches the last 24 hours of data. It returns nil on
	// failure; the Last* methods describe the response.
	RecentData(ctx context.Context) *model.RecentData

	LastResponseCode() int
	LastErrorMessage() string
	LastDataSuccess() bool
	LastResponseBody() []byte

	// Close releases the session.
	Close() error
}

// Exporter writes records as artifacts.
// *export.Exporter implements it.
type Exporter interface {
	Export(ctx context.Context, kind model.Kind, rec model.Record) (model.Artifact, error)
	ExportRaw(ctx context.Context, kind model.Kind, body []byte) (model.Artifact, error)
}

// Downloader runs download sessions against one API.
type Downloader struct {
	cfg      config.RunConfig
	api      API
	exporter Exporter
	reporter *SessionReporter
	clock    clock.Clock
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithClock sets the clock used for sleeps and timestamps.
func WithClock(c clock.Clock) Option {
	return func(d *Downloader) {
		d.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithIDGenerator sets the function that generates run IDs.
func WithIDGenerator(f func() string) Option {
	return func(d *Downloader) {
		d.newID = f
	}
}

// New creates a Downloader. cfg must be valid, see config.RunConfig.Validate.
func New(cfg config.RunConfig, api API, exporter Exporter, opts ...Option) *Downloader {
	d := &Downloader{
		cfg:      cfg,
		api:      api,
		exporter: exporter,
		clock:    clock.Real(),
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reporter = NewSessionReporter(api, exporter, d.logger)
	return d
}

// Run logs in with creds and executes the configured cycles.
// It never returns nil and never panics: every failure is logged and
// reflected in the summary. The API is closed before Run returns.
func (d *Downloader) Run(ctx context.Context, creds model.Credentials) (summary *model.RunSummary) {
	summary = &model.RunSummary{
		ID:        d.newID(),
		StartedAt: d.clock.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("run aborted",
				"run", summary.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			summary.Outcome = model.OutcomeAborted
		}
		if err := d.api.Close(); err != nil {
			d.logger.Warn("failed to close session", "run", summary.ID, "error", err)
		}
		summary.Finish(d.clock.Now())
		d.logger.Info("run finished",
			"run", summary.ID,
			"outcome", summary.Outcome,
			"cycles", len(summary.Cycles),
			"artifacts", len(summary.Artifacts()),
			"duration", summary.Duration(),
		)
	}()

	d.logger.Info("logging in", "run", summary.ID, "account", creds)
	if !d.api.Login(ctx, creds) {
		summary.LoginCode = d.api.LastResponseCode()
		summary.LoginError = d.api.LastErrorMessage()
		if ctx.Err() != nil {
			summary.Outcome = model.OutcomeCancelled
			return summary
		}
		d.logger.Error("login failed",
			"status", summary.LoginCode,
			"message", orNoDetails(summary.LoginError),
		)
		summary.Outcome = model.OutcomeLoginFailed
		return summary
	}
	summary.LoginCode = d.api.LastResponseCode()

	for i := range d.cfg.Repeat {
		if i > 0 {
			d.logger.Info("waiting for next cycle", "wait", d.cfg.Wait())
			if err := d.clock.Sleep(ctx, d.cfg.Wait()); err != nil {
				summary.Outcome = model.OutcomeCancelled
				return summary
			}
		}

		summary.Cycles = append(summary.Cycles, d.runCycle(ctx, i+1))
		if ctx.Err() != nil {
			summary.Outcome = model.OutcomeCancelled
			return summary
		}
	}
	return summary
}

// runCycle executes one cycle's pipeline.
func (d *Downloader) runCycle(ctx context.Context, index int) model.CycleResult {
	cycle := model.CycleResult{
		Index:     index,
		StartedAt: d.clock.Now(),
	}

	p := pipeline.New(
		pipeline.WithLogger(d.logger),
		pipeline.WithContinueOnError(true),
	)
	steps := make([]pipeline.Step, 0, 2)
	if d.cfg.DownloadSession {
		steps = append(steps, &sessionStep{reporter: d.reporter})
	}
	if d.cfg.DownloadData {
		steps = append(steps, &recentDataStep{downloader: d})
	}
	p.AddSteps(steps...)
	if p.StepCount() == 0 {
		d.logger.Warn("nothing to download: session and data are both disabled", "cycle", index)
		return cycle
	}

	d.logger.Info("cycle started", "cycle", index, "of", d.cfg.Repeat, "steps", p.StepNames())
	// Steps record their own failures; Execute only fails on cancellation.
	_ = p.Execute(ctx, &cycle)
	return cycle
}

// exportRecord writes rec and records the artifact or the error in cycle.
func exportRecord(ctx context.Context, exporter Exporter, logger *slog.Logger, cycle *model.CycleResult, kind model.Kind, rec model.Record) error {
	artifact, err := exporter.Export(ctx, kind, rec)
	if err != nil {
		logger.Error("export failed", "cycle", cycle.Index, "kind", kind, "error", err)
		cycle.AddError(err)
		return err
	}
	logger.Info("exported", "cycle", cycle.Index, "kind", kind, "location", artifact.Location)
	cycle.AddArtifact(artifact)
	return nil
}

func orNoDetails(msg string) string {
	if msg == "" {
		return noDetails
	}
	return msg
}
