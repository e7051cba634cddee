package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/labelsheet/pkg/artifact"
	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/document"
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/grid"
	"github.com/matzehuels/labelsheet/pkg/observability"
	"github.com/matzehuels/labelsheet/pkg/render"
	"github.com/matzehuels/labelsheet/pkg/sequence"
)

// Runner executes runs against one counter store.
//
// A Runner holds no per-run state. Concurrent Execute calls on the same
// store are serialized only if the store implements counter.Locker;
// otherwise the second commit fails with a counter conflict.
type Runner struct {
	Store    counter.Store
	Renderer render.Renderer
	Sink     artifact.Sink
	Logger   *log.Logger

	// Backend names the store in hook events.
	Backend string
}

// NewRunner creates a runner. If sink is nil, documents are kept in memory.
// If logger is nil, log.Default() is used.
func NewRunner(store counter.Store, renderer render.Renderer, sink artifact.Sink, logger *log.Logger) *Runner {
	if sink == nil {
		sink = artifact.NewMemorySink()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    store,
		Renderer: renderer,
		Sink:     sink,
		Logger:   logger,
	}
}

// Plan loads the counter and computes the sheet the next run would
// produce. It takes no lock and changes nothing.
func (r *Runner) Plan(ctx context.Context, opts Options) (*Plan, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return r.plan(ctx, opts)
}

func (r *Runner) plan(ctx context.Context, opts Options) (*Plan, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	start, err := opts.ResolveStart(snap)
	if err != nil {
		return nil, err
	}

	rng, next, err := sequence.Reserve(start, opts.Geometry.Count())
	if err != nil {
		return nil, err
	}
	g, err := grid.Build(rng.Numbers(), opts.Geometry.GridSpec())
	if err != nil {
		return nil, err
	}
	page, err := document.Assemble(g, opts.Geometry)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Snapshot:  snap,
		Range:     rng,
		NextStart: next,
		Grid:      g,
		Page:      page,
	}, nil
}

// Execute performs one complete run.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	logger := opts.logger(r.Logger).With("run", runID[:8])
	hooks := observability.Pipeline()

	result := &Result{
		RunID:       runID,
		Format:      r.Renderer.Format(),
		ContentType: r.Renderer.ContentType(),
	}

	// Stage 1: Lock
	if !opts.DryRun {
		unlock, err := r.lock(ctx, result)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warn("could not release counter lock", "err", err)
			}
		}()
	}

	// Stage 2: Plan
	planStart := time.Now()
	plan, err := r.plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Range = plan.Range
	result.NextStart = plan.NextStart
	result.Grid = plan.Grid
	result.Page = plan.Page
	result.Stats.Labels = plan.Range.Count
	result.Stats.PlanTime = time.Since(planStart)
	hooks.OnAllocate(ctx, plan.Range.First, plan.Range.Count)

	logger.Debug("reserved labels",
		"first", plan.Range.First,
		"last", plan.Range.Last(),
		"count", plan.Range.Count,
		"persisted", plan.Snapshot.Exists)

	if plan.Page.Overflows() {
		result.Stats.Overflow = true
		logger.Warn("label table exceeds the printable area",
			"table", [2]int{plan.Page.TableWidth(), plan.Page.TableHeight()},
			"content", [2]float64{plan.Page.ContentWidth(), plan.Page.ContentHeight()})
	}

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, result.Format)
	var buf bytes.Buffer
	err = r.Renderer.Render(ctx, plan.Page, &buf)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, result.Format, buf.Len(), result.Stats.RenderTime, err)
	if err != nil {
		return nil, withCode(errors.ErrCodeRender, err, "render %s", result.Format)
	}
	result.Document = buf.Bytes()
	result.Stats.Bytes = buf.Len()

	logger.Debug("rendered document",
		"format", result.Format,
		"bytes", result.Stats.Bytes,
		"duration", result.Stats.RenderTime)

	if opts.DryRun {
		logger.Info("dry run, counter not advanced",
			"first", plan.Range.First,
			"last", plan.Range.Last())
		return result, nil
	}

	// Stage 4: Stage artifact
	art, err := r.Sink.Stage(ctx, opts.Output, result.Document)
	if err != nil {
		return nil, withCode(errors.ErrCodeOutput, err, "stage %s", opts.Output)
	}

	// Stage 5: Commit
	if err := r.commit(ctx, plan, result); err != nil {
		if derr := art.Discard(); derr != nil {
			logger.Warn("could not discard staged document", "err", derr)
		}
		return nil, err
	}
	result.Committed = true

	// Stage 6: Publish
	err = art.Publish()
	hooks.OnPublish(ctx, art.Path(), err)
	if err != nil {
		logger.Error("counter advanced but document not written; these labels are skipped",
			"first", plan.Range.First,
			"last", plan.Range.Last(),
			"next", plan.NextStart,
			"err", err)
		return result, withCode(errors.ErrCodeOutput, err, "publish %s", art.Path())
	}
	result.Output = art.Path()

	logger.Info("created document",
		"path", result.Output,
		"first", plan.Range.First,
		"last", plan.Range.Last())
	logger.Info("persisted counter", "next", plan.NextStart)

	return result, nil
}

// ExecuteBatch performs n runs back to back. Every sheet after the first
// starts where the previous one ended and gets a numbered output name.
// It stops at the first failure and returns the completed results.
func (r *Runner) ExecuteBatch(ctx context.Context, opts Options, n int) ([]*Result, error) {
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "sheet count must be positive, got %d", n)
	}
	results := make([]*Result, 0, n)
	base := opts.Output
	if base == "" {
		base = DefaultOutput
	}
	for i := 1; i <= n; i++ {
		o := opts
		o.Output = artifact.Numbered(base, i)
		if i > 1 {
			next := results[len(results)-1].NextStart
			o.StartOverride = &next
			o.Force = false
		}
		res, err := r.Execute(ctx, o)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) lock(ctx context.Context, result *Result) (func() error, error) {
	locker, ok := r.Store.(counter.Locker)
	if !ok {
		return func() error { return nil }, nil
	}
	start := time.Now()
	unlock, err := locker.Lock(ctx)
	result.Stats.LockWait = time.Since(start)
	observability.Store().OnLockWait(ctx, r.Backend, result.Stats.LockWait)
	if err != nil {
		return nil, withCode(errors.ErrCodePersistence, err, "lock counter")
	}
	return unlock, nil
}

func (r *Runner) load(ctx context.Context) (counter.Snapshot, error) {
	start := time.Now()
	snap, err := r.Store.Load(ctx)
	observability.Store().OnLoad(ctx, r.Backend, time.Since(start), err)
	if err != nil {
		return counter.Snapshot{}, withCode(errors.ErrCodePersistence, err, "load counter")
	}
	return snap, nil
}

func (r *Runner) commit(ctx context.Context, plan *Plan, result *Result) error {
	start := time.Now()
	err := ctx.Err()
	if err == nil {
		err = r.Store.Commit(ctx, plan.Snapshot, plan.NextStart)
	}
	result.Stats.CommitTime = time.Since(start)
	observability.Pipeline().OnCommit(ctx, plan.Range.First, plan.NextStart, result.Stats.CommitTime, err)
	if err == nil {
		return nil
	}

	var conflict *errors.ConflictError
	if errors.As(err, &conflict) {
		observability.Store().OnConflict(ctx, r.Backend, conflict.Expected, conflict.Actual)
		return err
	}
	return withCode(errors.ErrCodePersistence, err, "commit counter")
}

// withCode wraps err with code unless it already carries one.
func withCode(code errors.Code, err error, format string, args ...any) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(code, err, format, args...)
}
