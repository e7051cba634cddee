package pipeline

import (
	"testing"

	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/errors"
)

func intPtr(n int) *int { return &n }

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"zero rows", func(o *Options) { o.Geometry.Rows = 0 }, true},
		{"negative columns", func(o *Options) { o.Geometry.Columns = -1 }, true},
		{"unknown paper", func(o *Options) { o.Geometry.PageSize = "B7" }, true},
		{"negative start", func(o *Options) { o.Start = -1 }, true},
		{"negative override", func(o *Options) { o.StartOverride = intPtr(-5) }, true},
		{"bad output", func(o *Options) { o.Output = "dir/sheet.pdf" }, true},
		{"bad output on dry run", func(o *Options) { o.Output = "dir/sheet.pdf"; o.DryRun = true }, false},
		{"empty output", func(o *Options) { o.Output = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Validate() code = %q, want CONFIGURATION", errors.GetCode(err))
			}
			if err == nil && opts.Output == "" {
				t.Error("Validate() left Output empty")
			}
		})
	}
}

func TestResolveStart(t *testing.T) {
	tests := []struct {
		name     string
		snap     counter.Snapshot
		override *int
		force    bool
		want     int
		wantErr  bool
	}{
		{"nothing persisted", counter.Snapshot{}, nil, false, 1, false},
		{"persisted", counter.Snapshot{Value: 190, Exists: true}, nil, false, 190, false},
		{"persisted zero", counter.Snapshot{Value: 0, Exists: true}, nil, false, 0, false},
		{"override without state", counter.Snapshot{}, intPtr(50), false, 50, false},
		{"override ahead", counter.Snapshot{Value: 190, Exists: true}, intPtr(1000), false, 1000, false},
		{"override equal", counter.Snapshot{Value: 190, Exists: true}, intPtr(190), false, 190, false},
		{"override behind", counter.Snapshot{Value: 190, Exists: true}, intPtr(1), false, 0, true},
		{"override behind forced", counter.Snapshot{Value: 190, Exists: true}, intPtr(1), true, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.StartOverride = tt.override
			opts.Force = tt.force
			got, err := opts.ResolveStart(tt.snap)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveStart() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("ResolveStart() code = %q", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ResolveStart() = %d, want %d", got, tt.want)
			}
		})
	}
}
