package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the summary of one run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.RunSummary) (int, error)

	// WriteList outputs stored runs, newest first.
	WriteList(runs []model.RunMetadata) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
// Returns the total bytes written across all writers.
func (m *MultiWriter) Write(run *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteList outputs the runs to all configured Writers.
func (m *MultiWriter) WriteList(runs []model.RunMetadata) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteList(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// dateLayout is the layout of times in text reports.
const dateLayout = "2006-01-02 15:04:05 MST"

// fetchText describes the recent-data fetch of a cycle.
func fetchText(f *model.FetchResult) string {
	if f == nil {
		return "skipped"
	}
	codes := make([]string, len(f.Codes))
	for i, c := range f.Codes {
		codes[i] = strconv.Itoa(c)
	}
	noun := "attempts"
	if f.Attempts == 1 {
		noun = "attempt"
	}
	return fmt.Sprintf("%s after %d %s (%s)", f.State, f.Attempts, noun, strings.Join(codes, ","))
}

// cycleStatus returns "ok" or "failed".
func cycleStatus(c *model.CycleResult) string {
	if c.Failed() {
		return "failed"
	}
	return "ok"
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
