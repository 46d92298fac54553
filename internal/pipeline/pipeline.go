package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/pixelaudit/internal/model"
)

// Step is one stage of an audit run.
// Steps run in sequence, each reading and filling in the shared Audit.
type Step interface {
	// Do executes the step. Errors abort the run unless the pipeline was
	// built WithContinueOnError.
	Do(ctx context.Context, audit *model.Audit) error

	// Name returns the step's name for logging.
	Name() string
}

// AlwaysRunner is implemented by steps that must still run after the
// context is done, such as folds over outcomes that are already collected.
// Such steps must not block.
//
// Design decision: An interrupted audit still produces a full report.
// Rather than a separate shutdown path, the steps that resolve items
// (dispatch) and fold them (aggregate) opt in here and handle a done
// context themselves, so Execute stays a single loop.
type AlwaysRunner interface {
	AlwaysRun() bool
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing later steps after one fails.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run later steps even when
// one fails. Failed steps are logged only.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
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

// Execute runs every step in order against audit.
//
// The context is checked before each step. After cancellation only steps
// implementing AlwaysRunner still run; the audit is marked Interrupted and
// the context error is returned once the remaining steps are done.
func (p *Pipeline) Execute(ctx context.Context, audit *model.Audit) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil && !alwaysRuns(step) {
			if !audit.Interrupted {
				p.logger.Warn("pipeline cancelled",
					"step", step.Name(),
					"reason", err,
				)
			}
			audit.Interrupted = true
			continue
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"run_id", audit.RunID,
		)

		if err := step.Do(ctx, audit); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"run_id", audit.RunID,
				"error", err,
			)
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"run_id", audit.RunID,
			)
		}

		audit.PerformedSteps = append(audit.PerformedSteps, step.Name())
	}

	if err := ctx.Err(); err != nil {
		audit.Interrupted = true
		return err
	}
	return nil
}

func alwaysRuns(step Step) bool {
	ar, ok := step.(AlwaysRunner)
	return ok && ar.AlwaysRun()
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
