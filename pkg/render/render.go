package render

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matzehuels/labelsheet/pkg/document"
)

// Output formats.
const (
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF:  true,
	FormatJSON: true,
}

// Renderer turns a page description into a document byte stream.
type Renderer interface {
	// Format returns the format name, e.g. "pdf".
	Format() string

	// ContentType returns the MIME type of the produced stream.
	ContentType() string

	// Render writes the complete document for p to w.
	Render(ctx context.Context, p *document.Page, w io.Writer) error
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		names := make([]string, 0, len(ValidFormats))
		for f := range ValidFormats {
			names = append(names, f)
		}
		sort.Strings(names)
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// Extension returns the file extension for a format, including the dot.
func Extension(format string) string {
	return "." + format
}
