package sink

import (
	"github.com/matzehuels/labelsheet/pkg/render"
)

// ForFormat returns the renderer for format. PDF options are ignored for
// other formats.
func ForFormat(format string, opts ...PDFOption) (render.Renderer, error) {
	if err := render.ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case render.FormatJSON:
		return JSON{}, nil
	default:
		return NewPDF(opts...)
	}
}
