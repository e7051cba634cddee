package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/labelsheet/pkg/errors"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "label-sheet.pdf", "label-sheet.pdf", false},
		{"trimmed", "  sheet.pdf ", "sheet.pdf", false},
		{"decomposed umlaut", "Etiketten fu\u0308r Scanner.pdf", "Etiketten f\u00fcr Scanner.pdf", false},
		{"empty", "", "", true},
		{"path", "out/sheet.pdf", "", true},
		{"hidden", ".sheet.pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeName(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNumbered(t *testing.T) {
	tests := []struct {
		name string
		i    int
		want string
	}{
		{"label-sheet.pdf", 1, "label-sheet.pdf"},
		{"label-sheet.pdf", 2, "label-sheet-2.pdf"},
		{"label-sheet.pdf", 12, "label-sheet-12.pdf"},
		{"sheet", 3, "sheet-3"},
		{"a.b.json", 2, "a.b-2.json"},
	}
	for _, tt := range tests {
		if got := Numbered(tt.name, tt.i); got != tt.want {
			t.Errorf("Numbered(%q, %d) = %q, want %q", tt.name, tt.i, got, tt.want)
		}
	}
}

func TestFileSinkPublish(t *testing.T) {
	dir := t.TempDir()
	sink := FileSink{Dir: dir}

	a, err := sink.Stage(context.Background(), "sheet.pdf", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatal(err)
	}
	final := filepath.Join(dir, "sheet.pdf")
	if a.Path() != final {
		t.Errorf("Path() = %q, want %q", a.Path(), final)
	}
	if _, err := os.Stat(final); !os.IsNotExist(err) {
		t.Fatal("staged artifact must not be visible before Publish")
	}

	if err := a.Publish(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.7" {
		t.Errorf("published content = %q", data)
	}
	if err := a.Discard(); err != nil {
		t.Errorf("Discard() after Publish = %v", err)
	}
	if _, err := os.Stat(final); err != nil {
		t.Error("Discard() after Publish removed the published file")
	}
	assertNoTemps(t, dir)
}

func TestFileSinkOverwrites(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "sheet.pdf")
	if err := os.WriteFile(final, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := FileSink{Dir: dir}.Stage(context.Background(), "sheet.pdf", []byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Publish(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(final)
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
}

func TestFileSinkDiscard(t *testing.T) {
	dir := t.TempDir()
	a, err := FileSink{Dir: dir}.Stage(context.Background(), "sheet.pdf", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Discard(); err != nil {
		t.Fatal(err)
	}
	if err := a.Publish(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sheet.pdf")); !os.IsNotExist(err) {
		t.Error("Publish() after Discard must not create the file")
	}
	assertNoTemps(t, dir)
}

func TestFileSinkErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := FileSink{Dir: missing}.Stage(context.Background(), "sheet.pdf", nil)
	if !errors.Is(err, errors.ErrCodeOutput) {
		t.Errorf("Stage() into missing dir = %v, want output error", err)
	}

	_, err = FileSink{Dir: t.TempDir()}.Stage(context.Background(), "../sheet.pdf", nil)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Stage() with path name = %v, want configuration error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileSink{Dir: t.TempDir()}.Stage(ctx, "sheet.pdf", nil)
	if !errors.Is(err, errors.ErrCodeOutput) {
		t.Errorf("Stage() with cancelled context = %v, want output error", err)
	}
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	data := []byte("abc")
	a, err := sink.Stage(ctx, "a.pdf", data)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	if sink.Len() != 0 {
		t.Fatal("staged document published early")
	}
	if err := a.Publish(); err != nil {
		t.Fatal(err)
	}
	got, ok := sink.Get("a.pdf")
	if !ok || string(got) != "abc" {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	b, _ := sink.Stage(ctx, "b.pdf", []byte("b"))
	_ = b.Discard()
	_ = b.Publish()
	if _, ok := sink.Get("b.pdf"); ok {
		t.Error("discarded document was published")
	}
}

func assertNoTemps(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name()[0] == '.' {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}
