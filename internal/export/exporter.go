package export

import (
	"context"
	"errors"

	"github.com/amspoke/carelink-downloader/internal/anonymize"
	"github.com/amspoke/carelink-downloader/internal/clock"
	"github.com/amspoke/carelink-downloader/internal/model"
)

// Exporter serializes records and writes them to its sink.
type Exporter struct {
	sink      Sink
	clock     clock.Clock
	anonymize bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the clock used to name artifacts.
func WithClock(c clock.Clock) Option {
	return func(e *Exporter) {
		e.clock = c
	}
}

// WithAnonymize scrubs personal data from records before serialization.
func WithAnonymize(enabled bool) Option {
	return func(e *Exporter) {
		e.anonymize = enabled
	}
}

// New returns an Exporter writing to sink.
func New(sink Sink, opts ...Option) *Exporter {
	e := &Exporter{
		sink:  sink,
		clock: clock.Real(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes rec as an artifact of the given kind.
func (e *Exporter) Export(ctx context.Context, kind model.Kind, rec model.Record) (model.Artifact, error) {
	if model.IsNil(rec) {
		return model.Artifact{}, &Error{Kind: kind, Stage: StageSerialize, Err: ErrNilRecord}
	}
	if e.anonymize {
		rec = anonymize.Anonymize(rec)
	}

	content, err := Marshal(rec)
	if err != nil {
		return model.Artifact{}, &Error{Kind: kind, Stage: StageSerialize, Err: err}
	}
	return e.put(ctx, kind, content)
}

// ExportRaw writes a raw response body unchanged as an artifact of the
// given kind.
func (e *Exporter) ExportRaw(ctx context.Context, kind model.Kind, body []byte) (model.Artifact, error) {
	if len(body) == 0 {
		return model.Artifact{}, &Error{Kind: kind, Stage: StageSerialize, Err: ErrNilRecord}
	}
	return e.put(ctx, kind, body)
}

func (e *Exporter) put(ctx context.Context, kind model.Kind, content []byte) (model.Artifact, error) {
	name := ArtifactName(kind, e.clock.Now().Local())
	location, err := e.sink.Put(ctx, name, content)
	if err != nil {
		xerr := &Error{Kind: kind, Stage: StageWrite, Err: err}
		if errors.Is(err, ErrUpload) {
			xerr.Stage = StageUpload
		}
		var staged *stagedError
		if errors.As(err, &staged) {
			xerr.Path = staged.path
		}
		return model.Artifact{}, xerr
	}
	return model.Artifact{
		Kind:     kind,
		Name:     name,
		Location: location,
		Size:     len(content),
	}, nil
}
