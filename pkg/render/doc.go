// Package render defines the boundary between label layout and document
// backends.
//
// # Overview
//
// A [Renderer] consumes an abstract [document.Page] and writes a finished
// byte stream. The layout and allocation core never talks to a backend
// directly, so it can be tested without producing real documents.
//
// Implementations live in the [sink] subpackage:
//
//   - PDF via seehuhn.de/go/pdf, using a built-in standard font
//   - JSON, the page description itself, for inspection and debugging
//
//	r, err := sink.ForFormat(render.FormatPDF)
//	var buf bytes.Buffer
//	err = r.Render(ctx, page, &buf)
//
// [sink]: github.com/matzehuels/labelsheet/pkg/render/sink
package render
