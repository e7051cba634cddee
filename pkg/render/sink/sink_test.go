package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/labelsheet/pkg/document"
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/grid"
	"github.com/matzehuels/labelsheet/pkg/render"
	"github.com/matzehuels/labelsheet/pkg/sequence"
)

func testPage(t *testing.T, rows, cols int) *document.Page {
	t.Helper()
	geo := document.DefaultGeometry()
	geo.Rows, geo.Columns = rows, cols
	r, _, err := sequence.Reserve(1, geo.Count())
	if err != nil {
		t.Fatal(err)
	}
	g, err := grid.Build(r.Numbers(), geo.GridSpec())
	if err != nil {
		t.Fatal(err)
	}
	p, err := document.Assemble(g, geo)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{render.FormatPDF, "application/pdf", false},
		{render.FormatJSON, "application/json", false},
		{"svg", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := ForFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil && r.ContentType() != tt.want {
				t.Errorf("ContentType() = %q, want %q", r.ContentType(), tt.want)
			}
		})
	}
}

func TestPDFRender(t *testing.T) {
	r, err := NewPDF()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Render(context.Background(), testPage(t, 27, 7), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-1.7")) {
		t.Errorf("output does not start with a PDF 1.7 header: %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out[max(0, len(out)-32):], []byte("%%EOF")) {
		t.Errorf("output does not end with %s", "%%EOF")
	}
}

func TestPDFRenderCourier(t *testing.T) {
	r, err := NewPDF(WithPDFFont("Courier"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Render(context.Background(), testPage(t, 2, 2), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Render() wrote no output")
	}
}

func TestPDFRenderCancelled(t *testing.T) {
	r, err := NewPDF()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := r.Render(ctx, testPage(t, 1, 1), &buf); err == nil {
		t.Error("Render() with cancelled context succeeded")
	}
	if buf.Len() != 0 {
		t.Errorf("cancelled render wrote %d bytes", buf.Len())
	}
}

func TestValidateFont(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Helvetica", false},
		{"Courier-Bold", false},
		{"Times-Roman", false},
		{"Symbol", true},
		{"ZapfDingbats", true},
		{"Arial", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFont(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFont(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("ValidateFont(%q) code = %v, want %v", tt.name, errors.GetCode(err), errors.ErrCodeConfiguration)
			}
		})
	}

	if _, err := NewPDF(WithPDFFont("Symbol")); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("NewPDF(Symbol) error = %v, want configuration error", err)
	}
}

func TestJSONRender(t *testing.T) {
	page := testPage(t, 3, 2)
	var buf bytes.Buffer
	if err := (JSON{}).Render(context.Background(), page, &buf); err != nil {
		t.Fatal(err)
	}

	var got document.Page
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if diff := cmp.Diff(*page, got); diff != "" {
		t.Errorf("decoded page mismatch (-want +got):\n%s", diff)
	}
}
