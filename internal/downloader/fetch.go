package downloader

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// fetchRecentData runs the recent-data retry loop of one cycle and
// exports the result. The outcome is stored in cycle.Fetch.
func (d *Downloader) fetchRecentData(ctx context.Context, cycle *model.CycleResult) {
	result := &model.FetchResult{State: model.FetchAttempt}
	cycle.Fetch = result

	for {
		result.Attempts++
		result.State = model.FetchAttempt

		data := d.api.RecentData(ctx)
		code := d.api.LastResponseCode()
		result.Codes = append(result.Codes, code)

		switch {
		case code == http.StatusOK && d.api.LastDataSuccess():
			result.State = model.FetchSuccess
			result.Message = ""
			_ = exportRecord(ctx, d.exporter, d.logger, cycle, model.KindData, data)
			return

		case code == http.StatusOK:
			result.State = model.FetchDataError
			result.Message = orNoDetails(d.api.LastErrorMessage())
			d.logger.Error("recent data contains an error",
				"cycle", cycle.Index,
				"message", result.Message,
			)
			if d.cfg.DumpOnError {
				d.dumpResponse(ctx, cycle)
			}
			return

		case code == http.StatusUnauthorized:
			result.State = model.FetchAuthRetry
		default:
			result.State = model.FetchRetry
		}
		result.Message = orNoDetails(d.api.LastErrorMessage())

		if result.Attempts >= d.cfg.FetchAttempts {
			break
		}

		d.logger.Warn("recent data request failed, retrying",
			"cycle", cycle.Index,
			"state", result.State,
			"status", code,
			"attempt", result.Attempts,
			"of", d.cfg.FetchAttempts,
			"backoff", d.cfg.RetryBackoff,
		)
		if err := d.clock.Sleep(ctx, d.cfg.RetryBackoff); err != nil {
			cycle.AddError(fmt.Errorf("recent data: %w", err))
			return
		}
	}

	last := result.State
	result.State = model.FetchGiveUp
	d.logger.Warn("giving up on recent data",
		"cycle", cycle.Index,
		"attempts", result.Attempts,
		"last_state", last,
		"status", result.Codes[len(result.Codes)-1],
		"message", result.Message,
	)
}

// dumpResponse exports the raw body of the last recent-data response.
func (d *Downloader) dumpResponse(ctx context.Context, cycle *model.CycleResult) {
	artifact, err := d.exporter.ExportRaw(ctx, model.KindDataException, d.api.LastResponseBody())
	if err != nil {
		d.logger.Error("export failed", "cycle", cycle.Index, "kind", model.KindDataException, "error", err)
		cycle.AddError(err)
		return
	}
	d.logger.Info("exported", "cycle", cycle.Index, "kind", model.KindDataException, "location", artifact.Location)
	cycle.AddArtifact(artifact)
}
