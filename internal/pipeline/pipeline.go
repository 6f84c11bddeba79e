// Package pipeline runs the ordered steps of one download cycle.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// Step is one unit of work of a cycle.
// Steps are executed in sequence, each receiving the cycle result that
// previous steps have filled in.
type Step interface {
	// Do executes the step. Artifacts it produces are added to cycle.
	// A returned error is recorded in the cycle; failures that the step
	// already recorded itself should not be returned again.
	Do(ctx context.Context, cycle *model.CycleResult) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps executing steps after one fails.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger of the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep going when a step
// fails. A failed session export must not prevent the data download, so
// the downloader always enables it.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline. Steps are added with AddStep.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in sequence. Context cancellation is checked
// before each step. It returns the first step error when continueOnError
// is false, or the context error when cancelled; otherwise nil.
func (p *Pipeline) Execute(ctx context.Context, cycle *model.CycleResult) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("cycle cancelled",
				"step", step.Name(),
				"cycle", cycle.Index,
				"reason", err,
			)
			return err
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"cycle", cycle.Index,
		)

		if err := step.Do(ctx, cycle); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"cycle", cycle.Index,
				"error", err,
			)
			cycle.AddError(err)
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"cycle", cycle.Index,
		)
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
