// Package pipeline runs one label sheet from configuration to a published
// document and an advanced counter.
//
// Both the CLI and the HTTP server drive runs through a [Runner], so the
// ordering rules below hold for every entry point.
//
// # Stages
//
//  1. Validate the geometry. Nothing is allocated for an invalid sheet.
//  2. Take the store lock, if the store supports one.
//  3. Load the counter and resolve the start number.
//  4. Reserve rows*columns numbers, build the grid, assemble the page.
//  5. Render the page into memory.
//  6. Stage the artifact (written and synced, not yet visible).
//  7. Commit the counter.
//  8. Publish the artifact.
//
// A failure in stages 1 to 7 leaves the counter where it was, so a rerun
// with the same configuration reproduces the same labels. A failed publish
// after a successful commit is reported as an error and logged with the
// consumed range: those numbers are skipped, never issued twice.
//
// # Start number
//
// The start number is, in order of precedence, an explicit override, the
// persisted counter, or [Options.Start]. An override below the persisted
// counter would reissue labels and is rejected unless [Options.Force] is set.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, renderer, artifact.FileSink{}, logger)
//	result, err := runner.Execute(ctx, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Range.First, result.Range.Last(), result.Output)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/document"
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/grid"
	"github.com/matzehuels/labelsheet/pkg/sequence"
)

// DefaultOutput is the file name used when Options.Output is empty.
const DefaultOutput = "label-sheet.pdf"

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures one run.
type Options struct {
	// Geometry describes the sheet.
	Geometry document.Geometry `json:"geometry"`

	// Start is the first number when no counter has been persisted yet.
	Start int `json:"start"`

	// StartOverride, if set, replaces the persisted counter for this run.
	StartOverride *int `json:"start_override,omitempty"`

	// Force allows an override below the persisted counter.
	Force bool `json:"force,omitempty"`

	// Output is the artifact file name.
	Output string `json:"output,omitempty"`

	// DryRun renders the sheet but neither writes it nor commits.
	DryRun bool `json:"dry_run,omitempty"`

	// Logger replaces the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns options for the scanner label sheet.
func DefaultOptions() Options {
	return Options{
		Geometry: document.DefaultGeometry(),
		Start:    counter.DefaultStart,
		Output:   DefaultOutput,
	}
}

// Validate checks the options. It runs before anything is allocated.
func (o *Options) Validate() error {
	if err := o.Geometry.Validate(); err != nil {
		return err
	}
	if o.Start < 0 {
		return errors.New(errors.ErrCodeConfiguration, "start must not be negative, got %d", o.Start)
	}
	if o.StartOverride != nil && *o.StartOverride < 0 {
		return errors.New(errors.ErrCodeConfiguration, "start must not be negative, got %d", *o.StartOverride)
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if !o.DryRun {
		return errors.ValidateOutputName(o.Output)
	}
	return nil
}

// ResolveStart picks the start number for a run given the persisted state.
func (o *Options) ResolveStart(snap counter.Snapshot) (int, error) {
	if o.StartOverride == nil {
		return snap.Or(o.Start), nil
	}
	start := *o.StartOverride
	if snap.Exists && start < snap.Value && !o.Force {
		return 0, errors.New(errors.ErrCodeConfiguration,
			"start %d is below the persisted counter %d: labels %d to %d were already issued (force to reissue them)",
			start, snap.Value, start, snap.Value-1)
	}
	return start, nil
}

func (o *Options) logger(fallback *log.Logger) *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if fallback != nil {
		return fallback
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

// =============================================================================
// Plan and Result
// =============================================================================

// Plan is the side-effect free part of a run: the numbers a run would
// allocate and the page it would produce.
type Plan struct {
	Snapshot  counter.Snapshot
	Range     sequence.Range
	NextStart int
	Grid      *grid.Grid
	Page      *document.Page
}

// Result contains the outputs of a run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Range is the block of numbers printed on the sheet.
	Range sequence.Range

	// NextStart is the counter value after the run.
	NextStart int

	Grid *grid.Grid
	Page *document.Page

	// Document is the rendered byte stream.
	Document []byte

	// Format and ContentType describe Document.
	Format      string
	ContentType string

	// Output is the published path. Empty for dry runs.
	Output string

	// Committed reports whether the counter was advanced.
	Committed bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Labels     int
	Bytes      int
	Overflow   bool
	LockWait   time.Duration
	PlanTime   time.Duration
	RenderTime time.Duration
	CommitTime time.Duration
}
