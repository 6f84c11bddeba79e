package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amspoke/carelink-downloader/internal/config"
	"github.com/amspoke/carelink-downloader/internal/model"
)

const (
	// boundaryMessage is the message of every trigger response.
	boundaryMessage = "hello world"

	// boundaryLocation is the location of a trigger response when the
	// outcome is not reported.
	boundaryLocation = "ok"

	// setupErrorLocation is the reported location of a run that could not
	// be started.
	setupErrorLocation = "error"

	// shutdownTimeout bounds the graceful shutdown of the HTTP server.
	shutdownTimeout = 10 * time.Second

	// readHeaderTimeout bounds the time to read request headers.
	readHeaderTimeout = 10 * time.Second
)

// runFunc performs one download run.
type runFunc func(ctx context.Context) (*model.RunSummary, error)

// boundaryResponse is the body of a trigger response.
type boundaryResponse struct {
	Message  string `json:"message"`
	Location string `json:"location"`
}

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP endpoint that triggers download runs",
		Long: `Serve listens for HTTP requests and performs one download run per
request to "/". Runs never overlap: a request waits until the previous
run finished. Each run uses a fresh CareLink session.

The response is always 200 with {"message":"hello world","location":"ok"}
so existing schedulers keep working. With --report-status the location
carries the run outcome and failed runs answer 502.

Examples:
  # Listen on the default address
  carelink-downloader serve --data

  # Report the outcome and log JSON lines
  carelink-downloader serve --data --report-status --json-logs --listen :9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addDownloadFlags(cmd)

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr, "Address to listen on")
	cmd.Flags().Bool("report-status", false, "Answer with the run outcome instead of the fixed payload")
	cmd.Flags().Bool("json-logs", false, "Write logs as JSON lines")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	srv := newServer(ctx, func(ctx context.Context) (*model.RunSummary, error) {
		return executeRun(ctx, cfg, logger)
	}, cfg.ReportStatus, logger)

	return serve(ctx, cfg.ListenAddr, srv.routes(), logger)
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return group.Wait()
}

// server answers trigger requests.
type server struct {
	// ctx is the lifetime of the process. Runs are not cancelled when a
	// client disconnects.
	ctx          context.Context //nolint:containedctx // process lifetime
	run          runFunc
	reportStatus bool
	logger       *slog.Logger

	// mu serializes runs.
	mu sync.Mutex
}

// newServer returns a server performing run once per trigger.
func newServer(ctx context.Context, run runFunc, reportStatus bool, logger *slog.Logger) *server {
	return &server{
		ctx:          ctx,
		run:          run,
		reportStatus: reportStatus,
		logger:       logger,
	}
}

// routes returns the router of the server.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleTrigger)
	r.Post("/", s.handleTrigger)
	r.Get("/healthz", s.handleHealth)
	return r
}

// handleTrigger performs one run and writes the boundary response.
func (s *server) handleTrigger(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	summary, err := s.run(s.ctx)
	s.mu.Unlock()

	status := http.StatusOK
	resp := boundaryResponse{Message: boundaryMessage, Location: boundaryLocation}

	if err != nil {
		s.logger.Error("run could not be started", "error", err)
		if s.reportStatus {
			status = http.StatusBadGateway
			resp.Location = setupErrorLocation
		}
	} else if s.reportStatus {
		resp.Location = string(summary.Outcome)
		if summary.Outcome != model.OutcomeOK {
			status = http.StatusBadGateway
		}
	}

	s.writeJSON(w, status, resp)
}

// handleHealth answers liveness checks.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Custom-Header", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}
