package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/storyscraper/internal/model"
)

// Step is one stage of a crawl.
type Step interface {
	// Do executes the step. It reads what earlier steps left in the crawl
	// and records its own result there.
	Do(ctx context.Context, crawl *model.Crawl) error

	// Name returns the model.Stage the step implements.
	Name() string
}

// StepError reports the step a pipeline stopped at.
type StepError struct {
	// Step is the name of the failed step.
	Step string

	// Err is the error the step returned, or the context error if the
	// pipeline was canceled before the step ran.
	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline executes steps in order against one crawl.
// Each step sees what the steps before it recorded in the model.Crawl and
// adds its own result, so the order of AddSteps is the order of the stages.
//
// Design decision: the pipeline always stops at the first failing step.
// A crawl produces a single document and every stage consumes the output
// of the one before it, so there is nothing useful a later stage could do
// with a missing tree. The failed stage is recorded on the crawl and
// reported through StepError.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
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

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against crawl.
//
// Before each step the context is checked; if it is done, the step that was
// about to run is marked failed and its StepError wraps ctx.Err(). Otherwise
// the crawl advances to the step's state and the step runs. The first error
// marks that stage failed on the crawl and is returned as a *StepError; no
// later step runs.
//
// Design decision: cancellation is only checked between steps. Steps that
// block (fetching, rendering) receive ctx themselves and return its error,
// which surfaces here like any other step failure.
func (p *Pipeline) Execute(ctx context.Context, crawl *model.Crawl) error {
	for _, step := range p.steps {
		stage := model.Stage(step.Name())

		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline canceled",
				"step", step.Name(),
				"url", crawl.URL,
				"reason", err,
			)
			crawl.Fail(stage)
			return &StepError{Step: step.Name(), Err: err}
		}

		crawl.Advance(stage.State())
		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", crawl.URL,
		)

		if err := step.Do(ctx, crawl); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"url", crawl.URL,
				"error", err,
			)
			crawl.Fail(stage)
			return &StepError{Step: step.Name(), Err: err}
		}
	}

	crawl.Advance(model.StateSerialized)
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
