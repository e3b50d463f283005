// Package pipeline runs the verification workflow: routing, evidence
// research, evaluation and answer validation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/factcheck/internal/checkpoint"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/route"
)

var tracer = otel.Tracer("factcheck/pipeline")

// Options wires the pipeline collaborators. Router defaults to a router
// with default thresholds; Store, Metrics and Retriever are optional.
type Options struct {
	Router      Router
	Retriever   Retriever
	Evaluator   Evaluator
	Synthesizer Synthesizer
	Store       checkpoint.Store
	Metrics     *Metrics
	Logger      *slog.Logger
	Retry       RetryPolicy
	Transitions Transitions // Defaults to DefaultTransitions()
}

// Pipeline is the workflow state machine. It is safe for concurrent runs;
// each run owns its own state.
type Pipeline struct {
	stages      map[Stage]StageFunc
	transitions Transitions
	store       checkpoint.Store
	metrics     *Metrics
	logger      *slog.Logger
}

// NewPipeline creates a pipeline from opts. Evaluator and Synthesizer are
// required.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Evaluator == nil || opts.Synthesizer == nil {
		return nil, fmt.Errorf("pipeline requires an evaluator and a synthesizer")
	}
	if opts.Router == nil {
		opts.Router = route.NewRouter(model.RouterConfig{})
	}
	if opts.Transitions == nil {
		opts.Transitions = DefaultTransitions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		transitions: opts.Transitions,
		store:       opts.Store,
		metrics:     opts.Metrics,
		logger:      logger,
	}

	raw := map[Stage]StageFunc{
		StageRouting:     routingStage(opts.Router),
		StageResearching: researchingStage(opts.Retriever, logger),
		StageEvaluating:  evaluatingStage(opts.Evaluator),
		StageValidating:  validatingStage(opts.Synthesizer),
	}
	p.stages = make(map[Stage]StageFunc, len(raw))
	for stage, fn := range raw {
		p.stages[stage] = Retry(p.retryPolicy(stage, opts.Retry), fn)
	}
	return p, nil
}

func (p *Pipeline) retryPolicy(stage Stage, base RetryPolicy) RetryPolicy {
	next := base.OnRetry
	base.OnRetry = func(attempt int, err error) {
		p.metrics.stageRetried(stage)
		p.logger.Warn("stage failed, retrying",
			slog.String("stage", string(stage)),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if next != nil {
			next(attempt, err)
		}
	}
	return base
}

// RunOption customizes a single run
type RunOption func(*runOptions)

type runOptions struct {
	runID string
}

// WithRunID sets the run id, which is also the checkpoint key. Reusing the
// id of a completed run returns its stored result; reusing the id of an
// unfinished run resumes it.
func WithRunID(id string) RunOption {
	return func(o *runOptions) { o.runID = id }
}

// Run executes the workflow to completion. It never returns nil; failures
// are reported through Result.Failed.
func (p *Pipeline) Run(ctx context.Context, query string, opts ...RunOption) *model.Result {
	return p.execute(ctx, query, opts, nil)
}

// RunAsync executes the workflow in the background. The channel yields
// exactly one result and is then closed.
func (p *Pipeline) RunAsync(ctx context.Context, query string, opts ...RunOption) <-chan *model.Result {
	out := make(chan *model.Result, 1)
	go func() {
		defer close(out)
		out <- p.execute(ctx, query, opts, nil)
	}()
	return out
}

// Stream executes the workflow and reports progress. Every stage yields a
// stage_started and a stage_ended event; the last event is run_completed.
// The channel is closed afterwards. It buffers a whole linear run, so a
// consumer that stops reading never stalls the run; once ctx is done,
// events that do not fit are dropped.
func (p *Pipeline) Stream(ctx context.Context, query string, opts ...RunOption) <-chan model.Event {
	events := make(chan model.Event, 2*len(p.stages)+1)
	emit := func(e model.Event) {
		if e.Type == model.EventRunCompleted {
			select {
			case events <- e:
				return
			default:
			}
		}
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}
	go func() {
		defer close(events)
		p.execute(ctx, query, opts, emit)
	}()
	return events
}

func (p *Pipeline) execute(ctx context.Context, query string, opts []RunOption, emit func(model.Event)) *model.Result {
	var ro runOptions
	for _, o := range opts {
		o(&ro)
	}
	runID := ro.runID
	if runID == "" {
		runID = "run-" + uuid.NewString()
	}
	if emit == nil {
		emit = func(model.Event) {}
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "factcheck.Run",
		trace.WithAttributes(attribute.String("run.id", runID)),
	)
	defer span.End()
	logger := p.logger.With(slog.String("run_id", runID))

	state, stored := p.load(ctx, runID, query, logger)
	if stored != nil {
		emit(model.Event{Type: model.EventRunCompleted, At: time.Now(), Result: stored, TotalDuration: time.Since(start)})
		return stored
	}
	p.save(ctx, state, logger)

	for Stage(state.Next) != StageDone {
		stage := Stage(state.Next)
		if err := ctx.Err(); err != nil {
			return p.fail(ctx, span, state, stage, fmt.Errorf("canceled before %s: %w", stage, err), start, emit, logger)
		}
		fn, ok := p.stages[stage]
		if !ok {
			return p.fail(ctx, span, state, stage, fmt.Errorf("unknown stage %q", stage), start, emit, logger)
		}

		emit(model.Event{Type: model.EventStageStarted, Stage: string(stage), At: time.Now()})
		delta, elapsed, err := p.runStage(ctx, stage, fn, state)
		if err != nil {
			p.metrics.stageFailed(stage)
			emit(model.Event{Type: model.EventStageEnded, Stage: string(stage), At: time.Now(), Duration: elapsed})
			return p.fail(ctx, span, state, stage, fmt.Errorf("%s: %w", stage, err), start, emit, logger)
		}

		merge(state, stage, delta, elapsed)
		emit(model.Event{
			Type:       model.EventStageEnded,
			Stage:      string(stage),
			At:         time.Now(),
			Duration:   elapsed,
			OutputKeys: delta.Keys(),
		})
		state.Next = string(p.transitions.Next(stage, state))
		logger.Debug("stage completed",
			slog.String("stage", string(stage)),
			slog.Duration("duration", elapsed),
			slog.String("next", state.Next),
		)
	}

	total := time.Since(start)
	result := buildResult(state, total)
	state.Result = result
	state.Error = ""
	p.save(ctx, state, logger)

	decision := routeLabel(state)
	p.metrics.runCompleted(decision, "ok")
	span.SetAttributes(attribute.String("run.route", decision))
	span.SetStatus(codes.Ok, "")
	logger.Info("run completed",
		slog.String("route", decision),
		slog.Float64("confidence", result.Confidence),
		slog.Duration("duration", total),
	)

	emit(model.Event{Type: model.EventRunCompleted, At: time.Now(), Result: result, TotalDuration: total})
	return result
}

// runStage runs one stage against a copy of state inside its own span
func (p *Pipeline) runStage(ctx context.Context, stage Stage, fn StageFunc, state *State) (Delta, time.Duration, error) {
	ctx, span := tracer.Start(ctx, "factcheck."+string(stage),
		trace.WithAttributes(attribute.String("stage", string(stage))),
	)
	defer span.End()

	start := time.Now()
	delta, err := fn(ctx, *state.Clone())
	elapsed := time.Since(start)
	p.metrics.observeStage(stage, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Delta{}, elapsed, err
	}
	span.SetAttributes(attribute.StringSlice("stage.output_keys", delta.Keys()))
	return delta, elapsed, nil
}

// fail records a terminal failure. The snapshot keeps the failed stage as
// Next so a later run with the same id retries from there.
func (p *Pipeline) fail(ctx context.Context, span trace.Span, state *State, stage Stage, err error, start time.Time, emit func(model.Event), logger *slog.Logger) *model.Result {
	total := time.Since(start)
	state.Next = string(stage)
	state.Error = err.Error()
	p.save(ctx, state, logger)

	p.metrics.runCompleted(routeLabel(state), "failed")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("run failed",
		slog.String("stage", string(stage)),
		slog.String("error", err.Error()),
		slog.Duration("duration", total),
	)

	result := failureResult(state, stage, err, total)
	emit(model.Event{Type: model.EventRunCompleted, At: time.Now(), Result: result, TotalDuration: total})
	return result
}

// load returns the state to run. A completed checkpoint is returned as its
// stored result instead.
func (p *Pipeline) load(ctx context.Context, runID, query string, logger *slog.Logger) (*State, *model.Result) {
	if p.store == nil {
		return newState(runID, query), nil
	}

	state, ok, err := p.store.Load(ctx, runID)
	if err != nil {
		logger.Warn("checkpoint load failed, starting fresh", slog.String("error", err.Error()))
		return newState(runID, query), nil
	}
	if !ok {
		return newState(runID, query), nil
	}

	if state.Completed() {
		logger.Info("returning completed run from checkpoint")
		res := *state.Result
		meta := make(map[string]any, len(res.Metadata)+1)
		for k, v := range res.Metadata {
			meta[k] = v
		}
		meta["from_checkpoint"] = true
		res.Metadata = meta
		return state, &res
	}

	if state.Next == "" {
		state.Next = string(StageRouting)
	}
	if state.Metadata == nil {
		state.Metadata = make(map[string]map[string]any)
	}
	if state.Timings == nil {
		state.Timings = make(map[string]time.Duration)
	}
	state.RunID = runID
	state.Error = ""
	logger.Info("resuming run from checkpoint", slog.String("stage", state.Next))
	return state, nil
}

// save writes a snapshot. Failures are logged; checkpoints never fail a
// run. Saving ignores cancellation so failed runs are still recorded.
func (p *Pipeline) save(ctx context.Context, state *State, logger *slog.Logger) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(context.WithoutCancel(ctx), state.RunID, state); err != nil {
		logger.Warn("checkpoint save failed", slog.String("error", err.Error()))
	}
}

func routeLabel(s *State) string {
	if s.Route == nil {
		return "unknown"
	}
	return string(s.Route.Decision)
}
