package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every artifact and error, not only the counts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(run *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeCycles(&sb, run)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteList outputs one line per run.
func (w *SimpleWriter) WriteList(runs []model.RunMetadata) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	fmt.Fprintf(&sb, "%-36s  %-23s  %-12s  %6s  %9s  %8s\n", "RUN", "STARTED", "OUTCOME", "CYCLES", "ARTIFACTS", "FAILURES")
	for _, r := range runs {
		fmt.Fprintf(&sb, "%-36s  %-23s  %-12s  %6d  %9d  %8d\n",
			r.ID, r.StartedAt.Format(dateLayout), r.Outcome, r.Cycles, r.Artifacts, r.Failures)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     CARELINK DOWNLOAD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run:        %s\n", run.ID)
	fmt.Fprintf(sb, "Started:    %s\n", run.StartedAt.Format(dateLayout))
	fmt.Fprintf(sb, "Duration:   %s\n", run.Duration())
	fmt.Fprintf(sb, "Outcome:    %s\n", run.Outcome)
	fmt.Fprintf(sb, "Login:      %d\n", run.LoginCode)
	if run.LoginError != "" {
		fmt.Fprintf(sb, "            %s\n", run.LoginError)
	}
	fmt.Fprintf(sb, "Artifacts:  %d\n", len(run.Artifacts()))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCycles(sb *strings.Builder, run *model.RunSummary) {
	if len(run.Cycles) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CYCLES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for i := range run.Cycles {
		c := &run.Cycles[i]
		indicator := "+"
		if c.Failed() {
			indicator = "!"
		}
		fmt.Fprintf(sb, "[%s] Cycle %d: %s, %d artifact(s)\n", indicator, c.Index, cycleStatus(c), len(c.Artifacts))
		if c.Fetch != nil {
			fmt.Fprintf(sb, "    Recent data: %s\n", fetchText(c.Fetch))
			if c.Fetch.Message != "" && c.Fetch.State != model.FetchSuccess {
				fmt.Fprintf(sb, "    Message: %s\n", c.Fetch.Message)
			}
		}
		if w.verbose {
			for _, a := range c.Artifacts {
				fmt.Fprintf(sb, "    * %-8s %s (%d bytes)\n", a.Kind, a.Location, a.Size)
			}
		}
		for _, e := range c.Errors {
			fmt.Fprintf(sb, "    Error: %s\n", e)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
