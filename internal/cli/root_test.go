package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/labelsheet/pkg/buildinfo"
	"github.com/matzehuels/labelsheet/pkg/config"
	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/render"
)

func TestSetVersion(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, c, d })

	SetVersion("1.0.0", "abc123", "2024-01-01")
	if buildinfo.Version != "1.0.0" || buildinfo.Commit != "abc123" || buildinfo.Date != "2024-01-01" {
		t.Errorf("buildinfo = %q %q %q", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	}

	SetVersion("", "", "")
	if buildinfo.Version != "1.0.0" {
		t.Errorf("empty version must keep the previous one, got %q", buildinfo.Version)
	}
}

// workspace is a directory with a labelsheet.toml for one test.
type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T, content string) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{dir: dir, config: filepath.Join(dir, config.DefaultFile)}
	if content != "" {
		if err := os.WriteFile(ws.config, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return ws
}

// run executes the CLI with args plus --config.
func (ws workspace) run(t *testing.T, args ...string) error {
	t.Helper()
	return ws.runLogged(t, io.Discard, args...)
}

// runLogged is run with the CLI logger writing to w.
func (ws workspace) runLogged(t *testing.T, w io.Writer, args ...string) error {
	t.Helper()
	root := newRoot(New(w, LogInfo))
	root.SetArgs(append(args, "--config", ws.config))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// generate runs the generate command writing into the workspace.
func (ws workspace) generate(t *testing.T, args ...string) error {
	t.Helper()
	return ws.run(t, append([]string{"generate", "--output-dir", ws.dir}, args...)...)
}

func (ws workspace) counter(t *testing.T) counter.Snapshot {
	t.Helper()
	snap, err := counter.NewFileStore(ws.config).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func (ws workspace) exists(name string) bool {
	_, err := os.Stat(filepath.Join(ws.dir, name))
	return err == nil
}

const smallSheet = "[sheet]\nrows = 2\ncolumns = 3\n"

func TestGenerate(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	if err := ws.generate(t); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(ws.dir, config.DefaultOutput))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", data[:min(len(data), 8)])
	}
	if snap := ws.counter(t); snap.Value != 7 {
		t.Errorf("counter = %+v, want 7", snap)
	}

	// Geometry in the file survives the counter write.
	cfg, err := config.Load(ws.config)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sheet.Rows != 2 || cfg.Sheet.Columns != 3 || cfg.Start != 7 {
		t.Errorf("config after run: rows=%d columns=%d start=%d", cfg.Sheet.Rows, cfg.Sheet.Columns, cfg.Start)
	}
}

func TestGenerateIsDefaultCommand(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	if err := ws.run(t, "--rows", "1", "--output-dir", ws.dir); err != nil {
		t.Fatal(err)
	}
	if snap := ws.counter(t); snap.Value != 4 {
		t.Errorf("counter = %+v, want 4", snap)
	}
}

func TestGenerateWithoutConfigFile(t *testing.T) {
	ws := newWorkspace(t, "")
	if err := ws.generate(t, "--rows", "1", "--columns", "1"); err != nil {
		t.Fatal(err)
	}
	if snap := ws.counter(t); !snap.Exists || snap.Value != 2 {
		t.Errorf("counter = %+v, want 2 in the --config file", snap)
	}
}

func TestGenerateSheets(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	if err := ws.generate(t, "--sheets", "3", "--start", "10"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"label-sheet.pdf", "label-sheet-2.pdf", "label-sheet-3.pdf"} {
		if !ws.exists(name) {
			t.Errorf("%s not written", name)
		}
	}
	if snap := ws.counter(t); snap.Value != 28 {
		t.Errorf("counter = %+v, want 28", snap)
	}
}

func TestGenerateDryRun(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	if err := ws.generate(t, "--dry-run", "--sheets", "2"); err != nil {
		t.Fatal(err)
	}
	if ws.exists(config.DefaultOutput) {
		t.Error("dry run wrote a document")
	}
	if snap := ws.counter(t); snap.Exists {
		t.Errorf("dry run persisted the counter: %+v", snap)
	}
}

func TestGenerateJSON(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	if err := ws.generate(t, "--format", "json"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(ws.dir, "label-sheet.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"#0006"`) {
		t.Errorf("page description lacks the last label: %s", data)
	}
}

func TestGenerateInvalidGeometry(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	err := ws.generate(t, "--rows", "0")
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want CONFIGURATION", err)
	}
	if snap := ws.counter(t); snap.Exists {
		t.Errorf("counter written for an invalid sheet: %+v", snap)
	}
}

func TestGenerateStartBelowCounter(t *testing.T) {
	ws := newWorkspace(t, "start = 100\n"+smallSheet)
	if err := ws.generate(t, "--start", "50"); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want CONFIGURATION", err)
	}
	if err := ws.generate(t, "--start", "50", "--force"); err != nil {
		t.Fatal(err)
	}
	if snap := ws.counter(t); snap.Value != 56 {
		t.Errorf("counter = %+v, want 56", snap)
	}
}

func TestGenerateConfirmDeclined(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	root := newRoot(New(io.Discard, LogInfo))
	root.SetArgs([]string{"generate", "--confirm", "--config", ws.config, "--output-dir", ws.dir})
	root.SetIn(strings.NewReader("n"))
	root.SetOut(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if snap := ws.counter(t); snap.Exists {
		t.Errorf("declined run persisted the counter: %+v", snap)
	}
}

func TestCounterCommands(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	if err := ws.run(t, "counter", "show"); err != nil {
		t.Fatal(err)
	}
	if err := ws.run(t, "counter", "set", "500"); err != nil {
		t.Fatal(err)
	}
	if snap := ws.counter(t); snap.Value != 500 {
		t.Errorf("counter = %+v, want 500", snap)
	}
	if err := ws.run(t, "counter", "set", "abc"); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("set abc: err = %v", err)
	}
}

func TestCounterSetZero(t *testing.T) {
	ws := newWorkspace(t, smallSheet)
	if err := ws.run(t, "counter", "set", "0"); err != nil {
		t.Fatal(err)
	}
	if snap := ws.counter(t); !snap.Exists || snap.Value != 0 {
		t.Errorf("counter = %+v, want persisted 0", snap)
	}
}

func TestSetCounter(t *testing.T) {
	ctx := context.Background()
	store := counter.NewMemoryStoreAt(100)

	if _, err := setCounter(ctx, store, 50, false); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("lowering without force: err = %v", err)
	}
	if snap, _ := store.Load(ctx); snap.Value != 100 {
		t.Errorf("refused set changed the counter to %d", snap.Value)
	}

	prev, err := setCounter(ctx, store, 50, true)
	if err != nil {
		t.Fatal(err)
	}
	if prev != 100 {
		t.Errorf("prev = %d, want 100", prev)
	}

	prev, err = setCounter(ctx, counter.NewMemoryStore(), 7, false)
	if err != nil || prev != 0 {
		t.Errorf("fresh store: prev = %d, err = %v", prev, err)
	}
}

func TestOptionsFrom(t *testing.T) {
	cfg := config.Default()
	opts := optionsFrom(&cfg)
	if opts.Output != config.DefaultOutput {
		t.Errorf("Output = %q", opts.Output)
	}

	cfg.Format = render.FormatJSON
	if got := optionsFrom(&cfg).Output; got != "label-sheet.json" {
		t.Errorf("json Output = %q", got)
	}

	cfg.Output = "custom.pdf"
	n := 9
	cfg.StartOverride = &n
	opts = optionsFrom(&cfg)
	if opts.Output != "custom.pdf" {
		t.Errorf("explicit Output changed to %q", opts.Output)
	}
	if opts.StartOverride == nil || *opts.StartOverride != 9 {
		t.Errorf("StartOverride = %v", opts.StartOverride)
	}
}
