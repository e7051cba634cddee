package sink

import (
	"context"
	"fmt"
	"io"

	"seehuhn.de/go/pdf"
	pdfdoc "seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font/standard"

	"github.com/matzehuels/labelsheet/pkg/document"
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/render"
)

// DefaultFont is the standard font used for label text.
const DefaultFont = standard.Helvetica

// ascent places the first baseline below the top of a row, relative to the
// font size. Helvetica's ascender is 718/1000 em.
const ascent = 0.718

// PDFOption configures PDF rendering.
type PDFOption func(*PDF)

// WithPDFFont selects one of the standard PDF fonts by name,
// e.g. "Helvetica" or "Courier-Bold".
func WithPDFFont(name string) PDFOption {
	return func(r *PDF) { r.font = standard.Font(name) }
}

// WithPDFVersion sets the PDF version written to the file header.
func WithPDFVersion(v pdf.Version) PDFOption {
	return func(r *PDF) { r.version = v }
}

// PDF renders label sheets as single page PDF documents.
type PDF struct {
	font    standard.Font
	version pdf.Version
}

// NewPDF creates a PDF renderer.
func NewPDF(opts ...PDFOption) (*PDF, error) {
	r := &PDF{font: DefaultFont, version: pdf.V1_7}
	for _, opt := range opts {
		opt(r)
	}
	if !validFonts[r.font] {
		return nil, errors.New(errors.ErrCodeConfiguration, "unknown standard font %q", r.font)
	}
	return r, nil
}

// Format implements render.Renderer.
func (r *PDF) Format() string { return render.FormatPDF }

// ContentType implements render.Renderer.
func (r *PDF) ContentType() string { return "application/pdf" }

// Render implements render.Renderer.
//
// Labels are placed at the left edge of their column plus the style inset,
// with the top of the text at the top of their row. PDF user space grows
// upwards, so rows are counted down from the top margin.
func (r *PDF) Render(ctx context.Context, p *document.Page, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	paper := &pdf.Rectangle{URx: p.Size.Width, URy: p.Size.Height}
	page, err := pdfdoc.WriteSinglePage(w, paper, r.version, nil)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}

	F := r.font.New()

	size := p.Style.FontSize
	left := float64(p.Margins[document.MarginLeft] + p.Style.Inset)
	top := p.Size.Height - float64(p.Margins[document.MarginTop])

	page.TextBegin()
	page.TextSetFont(F, size)

	// Td moves relative to the start of the previous line.
	var lastX, lastY float64
	rowTop := top
	for i, row := range p.Table.Cells {
		rh := float64(p.Table.RowHeights[i])
		y := rowTop - ascent*size
		x := left
		for j, text := range row {
			page.TextFirstLine(x-lastX, y-lastY)
			page.TextShow(text)
			lastX, lastY = x, y
			x += float64(p.Table.ColumnWidths[j])
		}
		rowTop -= rh
	}
	page.TextEnd()

	if err := page.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

var validFonts = map[standard.Font]bool{
	standard.Courier:              true,
	standard.CourierBold:          true,
	standard.CourierBoldOblique:   true,
	standard.CourierOblique:       true,
	standard.Helvetica:            true,
	standard.HelveticaBold:        true,
	standard.HelveticaBoldOblique: true,
	standard.HelveticaOblique:     true,
	standard.TimesRoman:           true,
	standard.TimesBold:            true,
	standard.TimesBoldItalic:      true,
	standard.TimesItalic:          true,
}

// ValidateFont checks that name is a standard text font.
// Symbol and ZapfDingbats have no digits and are rejected.
func ValidateFont(name string) error {
	if !validFonts[standard.Font(name)] {
		return errors.New(errors.ErrCodeConfiguration,
			"invalid font %q (must be a standard PDF text font such as Helvetica or Courier)", name)
	}
	return nil
}

var _ render.Renderer = (*PDF)(nil)
