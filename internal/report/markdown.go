package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeAlert(md, run)
	w.writeCycles(md, run)
	w.writeArtifacts(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteList outputs the run history as a Markdown table.
func (w *MarkdownWriter) WriteList(runs []model.RunMetadata) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			"`" + r.ID + "`",
			r.StartedAt.Format(dateLayout),
			outcomeText(r.Outcome),
			strconv.Itoa(r.Cycles),
			strconv.Itoa(r.Artifacts),
			strconv.Itoa(r.Failures),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Outcome", "Cycles", "Artifacts", "Failures"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunSummary) {
	md.H1("CareLink Download Report")
	md.PlainText("")

	rows := [][]string{
		{"Run", "`" + run.ID + "`"},
		{"Started", run.StartedAt.Format(dateLayout)},
		{"Duration", run.Duration().String()},
		{"Outcome", outcomeText(run.Outcome)},
		{"Login status", strconv.Itoa(run.LoginCode)},
		{"Cycles", strconv.Itoa(len(run.Cycles))},
		{"Artifacts", strconv.Itoa(len(run.Artifacts()))},
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes an alert matching the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.RunSummary) {
	switch run.Outcome {
	case model.OutcomeLoginFailed:
		msg := run.LoginError
		if msg == "" {
			msg = "no details available"
		}
		md.Cautionf("Login failed with status %d: %s", run.LoginCode, msg)
	case model.OutcomeAborted:
		md.Cautionf("The run stopped unexpectedly after %d cycle(s).", len(run.Cycles))
	case model.OutcomeDegraded:
		md.Warningf("%d of %d cycle(s) had failed steps.", run.FailureCount(), len(run.Cycles))
	case model.OutcomeCancelled:
		md.Importantf("The run was cancelled after %d cycle(s).", len(run.Cycles))
	default:
		md.Tip("Every cycle completed successfully.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCycles(md *markdown.Markdown, run *model.RunSummary) {
	if len(run.Cycles) == 0 {
		return
	}

	md.H2("Cycles")
	md.PlainText("")

	rows := make([][]string, len(run.Cycles))
	for i := range run.Cycles {
		c := &run.Cycles[i]
		rows[i] = []string{
			strconv.Itoa(c.Index),
			c.StartedAt.Format(dateLayout),
			cycleStatus(c),
			fetchText(c.Fetch),
			strconv.Itoa(len(c.Artifacts)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Cycle", "Started", "Status", "Recent data", "Artifacts"},
		Rows:   rows,
	})
	md.PlainText("")

	for i := range run.Cycles {
		c := &run.Cycles[i]
		if len(c.Errors) == 0 {
			continue
		}
		md.Details("Cycle "+strconv.Itoa(c.Index)+" errors", joinLines(c.Errors))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, run *model.RunSummary) {
	artifacts := run.Artifacts()
	if len(artifacts) == 0 {
		return
	}

	md.H2("Artifacts")
	md.PlainText("")

	rows := make([][]string, len(artifacts))
	for i, a := range artifacts {
		rows[i] = []string{
			a.Kind.String(),
			truncateString(a.Location, 60),
			strconv.Itoa(a.Size),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Location", "Bytes"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, artifacts)
}

// writePieChart writes a mermaid pie chart of artifacts per kind.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, artifacts []model.Artifact) {
	counts := make(map[model.Kind]uint64)
	for _, a := range artifacts {
		counts[a.Kind]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Artifacts by Kind"),
		piechart.WithShowData(true),
	)
	for _, kind := range kindOrder {
		if n := counts[kind]; n > 0 {
			chart.LabelAndIntValue(kind.String(), n)
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by carelink-downloader*")
}

// kindOrder is the display order of artifact kinds.
var kindOrder = []model.Kind{
	model.KindUser,
	model.KindProfile,
	model.KindCountry,
	model.KindMonitor,
	model.KindData,
	model.KindDataException,
}

func outcomeText(o model.Outcome) string {
	switch o {
	case model.OutcomeOK:
		return "✅ ok"
	case model.OutcomeDegraded:
		return "⚠️ degraded"
	case model.OutcomeCancelled:
		return "⏹️ cancelled"
	default:
		return "❌ " + string(o)
	}
}

func joinLines(lines []string) string {
	return "- " + strings.Join(lines, "\n- ")
}
